// Package ciout writes the run's artifacts: the release-notes file and
// the GitHub Actions step outputs.
package ciout

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ivanphz/my-custom-caddy/internal/config"
)

// UnknownCoreVersion is emitted when the dependency graph carried no
// core record. Missing core is not an error.
const UnknownCoreVersion = "unknown"

// Sink writes generated text to files and to the CI output channel.
type Sink struct {
	cfg *config.Config
	log *zap.Logger
}

// New builds a Sink. A nil logger is replaced with a nop.
func New(cfg *config.Config, log *zap.Logger) *Sink {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sink{cfg: cfg, log: log}
}

// WriteNotes writes the rendered notes, creating or overwriting the
// configured file. Failure aborts the run.
func (s *Sink) WriteNotes(notes string) error {
	if err := os.WriteFile(s.cfg.NotesFile, []byte(notes), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.cfg.NotesFile, err)
	}
	s.log.Info("release notes written", zap.String("file", s.cfg.NotesFile))
	return nil
}

// AppendGitHubOutputs appends the step outputs to the file named by
// GITHUB_OUTPUT. Outside Actions (variable unset) it is a no-op. The
// output file is strictly append-only: other steps write to it too.
func (s *Sink) AppendGitHubOutputs(xcaddyArgs, caddyVersion string) error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		s.log.Debug("GITHUB_OUTPUT not set, skipping step outputs")
		return nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "XCADDY_ARGS=%s\n", xcaddyArgs); err != nil {
		return fmt.Errorf("append to %s: %w", path, err)
	}
	if _, err := fmt.Fprintf(f, "CADDY_VERSION=%s\n", caddyVersion); err != nil {
		return fmt.Errorf("append to %s: %w", path, err)
	}

	s.log.Info("step outputs appended",
		zap.String("file", path),
		zap.String("caddy_version", caddyVersion))
	return nil
}
