package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/ivanphz/my-custom-caddy/internal/config"
)

// maxManifestBytes caps the fetch body. The manifest is a few KB; a
// cap keeps a misbehaving endpoint from ballooning memory.
const maxManifestBytes = 4 << 20

// Store fetches the previous manifest and persists the current one.
type Store struct {
	cfg    *config.Config
	client *http.Client
	log    *zap.Logger
}

// NewStore builds a Store with a fetch-timeout-bounded HTTP client.
func NewStore(cfg *config.Config, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout},
		log:    log,
	}
}

// FetchPrevious downloads the manifest attached to the latest release
// and parses it into the plugin mapping. Every failure mode — no repo
// configured, network error, non-200, oversized or malformed body — is
// a valid "no previous manifest" state and yields an empty mapping.
func (s *Store) FetchPrevious(ctx context.Context) map[string]Record {
	url := s.cfg.ManifestFetchURL()
	if url == "" {
		s.log.Info("no repository configured, starting from empty baseline")
		return map[string]Record{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		s.log.Warn("manifest request build failed", zap.String("url", url), zap.Error(err))
		return map[string]Record{}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("manifest fetch failed", zap.String("url", url), zap.Error(err))
		return map[string]Record{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Warn("manifest fetch returned non-200",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode))
		return map[string]Record{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		s.log.Warn("manifest body read failed", zap.Error(err))
		return map[string]Record{}
	}

	var prev map[string]Record
	if err := json.Unmarshal(body, &prev); err != nil {
		s.log.Warn("previous manifest is not valid JSON", zap.Error(err))
		return map[string]Record{}
	}
	if prev == nil {
		prev = map[string]Record{}
	}

	s.log.Info("previous manifest fetched", zap.Int("plugins", len(prev)))
	return prev
}

// Persist writes the plugin mapping as pretty-printed JSON to the
// configured manifest file. The core record is not part of the
// manifest. A write failure here must abort the run: the artifact is
// the next run's baseline.
func (s *Store) Persist(snap *Snapshot) error {
	data, err := json.MarshalIndent(snap.Plugins, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.cfg.ManifestFile, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.cfg.ManifestFile, err)
	}
	return nil
}
