// Package config holds the pipeline configuration for geninfo.
// Everything the pipeline treats as a constant in CI (filenames, the
// release-asset URL pattern, the display timezone) lives here so tests
// can run the pipeline without touching the process environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is threaded through every pipeline stage.
type Config struct {
	// Repo is the "owner/name" GitHub repository whose latest release
	// carries the previous manifest. Overridden by GITHUB_REPOSITORY.
	Repo string `yaml:"repo"`

	// CorePrefix marks the one dependency tracked as the core build
	// target rather than as a plugin.
	CorePrefix string `yaml:"core_prefix"`

	// HostMarker selects which module paths count as plugins at all.
	HostMarker string `yaml:"host_marker"`

	// ManifestFile is both the local output filename and the release
	// asset name fetched from the previous run.
	ManifestFile string `yaml:"manifest_file"`

	// NotesFile is the local release-notes output filename.
	NotesFile string `yaml:"notes_file"`

	// ManifestURL is the fetch URL template; the %s placeholders are
	// the repo and the manifest filename.
	ManifestURL string `yaml:"manifest_url"`

	// FetchTimeout bounds the previous-manifest download.
	FetchTimeout time.Duration `yaml:"-"`

	// ListTimeout bounds the go list subprocess.
	ListTimeout time.Duration `yaml:"-"`

	// DisplayZone is the fixed offset used for human-readable commit
	// timestamps in the notes.
	DisplayZone *time.Location `yaml:"-"`
}

// fileConfig mirrors Config for the YAML file, with durations as
// strings ("30s", "2m") since yaml.v3 has no native duration decoding.
type fileConfig struct {
	Repo         string `yaml:"repo"`
	CorePrefix   string `yaml:"core_prefix"`
	HostMarker   string `yaml:"host_marker"`
	ManifestFile string `yaml:"manifest_file"`
	NotesFile    string `yaml:"notes_file"`
	ManifestURL  string `yaml:"manifest_url"`
	FetchTimeout string `yaml:"fetch_timeout"`
	ListTimeout  string `yaml:"list_timeout"`
}

// Default returns the configuration the CI workflow runs with.
func Default() *Config {
	return &Config{
		Repo:         os.Getenv("GITHUB_REPOSITORY"),
		CorePrefix:   "github.com/caddyserver/caddy",
		HostMarker:   "github.com",
		ManifestFile: "manifest.json",
		NotesFile:    "release_notes.md",
		ManifestURL:  "https://github.com/%s/releases/latest/download/%s",
		FetchTimeout: 30 * time.Second,
		ListTimeout:  2 * time.Minute,
		DisplayZone:  time.FixedZone("UTC+8", 8*60*60),
	}
}

// Load layers an optional YAML file and the environment over defaults.
// A missing file is not an error; a present but malformed file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else {
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
			if err := fc.apply(cfg); err != nil {
				return nil, fmt.Errorf("config %s: %w", path, err)
			}
		}
	}

	// Environment wins over the file: CI is the source of truth for
	// which repository we are building.
	if repo := os.Getenv("GITHUB_REPOSITORY"); repo != "" {
		cfg.Repo = repo
	}

	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = Default().FetchTimeout
	}
	if cfg.ListTimeout <= 0 {
		cfg.ListTimeout = Default().ListTimeout
	}
	if cfg.DisplayZone == nil {
		cfg.DisplayZone = Default().DisplayZone
	}

	return cfg, nil
}

// apply copies the file's non-empty fields onto cfg.
func (fc *fileConfig) apply(cfg *Config) error {
	if fc.Repo != "" {
		cfg.Repo = fc.Repo
	}
	if fc.CorePrefix != "" {
		cfg.CorePrefix = fc.CorePrefix
	}
	if fc.HostMarker != "" {
		cfg.HostMarker = fc.HostMarker
	}
	if fc.ManifestFile != "" {
		cfg.ManifestFile = fc.ManifestFile
	}
	if fc.NotesFile != "" {
		cfg.NotesFile = fc.NotesFile
	}
	if fc.ManifestURL != "" {
		cfg.ManifestURL = fc.ManifestURL
	}
	if fc.FetchTimeout != "" {
		d, err := time.ParseDuration(fc.FetchTimeout)
		if err != nil {
			return fmt.Errorf("fetch_timeout: %w", err)
		}
		cfg.FetchTimeout = d
	}
	if fc.ListTimeout != "" {
		d, err := time.ParseDuration(fc.ListTimeout)
		if err != nil {
			return fmt.Errorf("list_timeout: %w", err)
		}
		cfg.ListTimeout = d
	}
	return nil
}

// Validate checks the fields the fetch path depends on. The lister and
// report stages work with any non-empty defaults, so only the repo
// identity needs a shape check.
func (c *Config) Validate() error {
	if c.Repo == "" {
		// Valid: the fetch degrades to an empty baseline.
		return nil
	}
	parts := strings.Split(c.Repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("repo %q is not owner/name", c.Repo)
	}
	return nil
}

// ManifestFetchURL resolves the release-asset download URL, or "" when
// no repository is configured.
func (c *Config) ManifestFetchURL() string {
	if c.Repo == "" {
		return ""
	}
	return fmt.Sprintf(c.ManifestURL, c.Repo, c.ManifestFile)
}
