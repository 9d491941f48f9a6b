package manifest

import (
	"strings"

	"go.uber.org/zap"

	"github.com/ivanphz/my-custom-caddy/internal/config"
	"github.com/ivanphz/my-custom-caddy/internal/modlist"
)

// Normalize filters the raw module records down to the plugin set and
// resolves replace directives to their effective path/version/time.
//
// A record survives the filter iff it is not the main module, has a
// non-empty path containing the host marker, and is a direct
// dependency. Everything else is dropped silently. The filter is
// idempotent: normalizing an already-normalized set changes nothing.
func Normalize(mods []modlist.Module, cfg *config.Config, log *zap.Logger) *Snapshot {
	if log == nil {
		log = zap.NewNop()
	}

	snap := &Snapshot{Plugins: make(map[string]Record, len(mods))}

	for _, m := range mods {
		if m.Main || m.Path == "" || m.Indirect {
			continue
		}
		if !strings.Contains(m.Path, cfg.HostMarker) {
			continue
		}

		effPath, effVersion, effTime := m.Path, m.Version, m.Time
		replaced := false

		// Local filesystem replacements (./ or ../) keep the record's
		// own identity: there is nothing fetchable to report or build.
		if rep := m.Replace; rep != nil && !isLocalPath(rep.Path) {
			effPath = rep.Path
			effVersion = rep.Version
			effTime = rep.Time
			replaced = true
		}

		if effVersion == "" {
			effVersion = "unknown"
		}

		// The core dependency is keyed by its original path: it is the
		// build target itself, not a plugin passed to --with.
		if strings.HasPrefix(m.Path, cfg.CorePrefix) {
			snap.Core = &Core{Path: m.Path, Version: effVersion}
			continue
		}

		rec := Record{
			OriginalPath: m.Path,
			Version:      effVersion,
			Time:         effTime,
			IsReplaced:   replaced,
		}
		if replaced {
			p := effPath
			rec.ReplacePath = &p
		}

		// Last write wins on effective-path collisions; warn so a bad
		// replace pair shows up in the CI log.
		if prev, ok := snap.Plugins[effPath]; ok {
			log.Warn("effective path collision",
				zap.String("path", effPath),
				zap.String("kept", m.Path),
				zap.String("overwritten", prev.OriginalPath))
		}
		snap.Plugins[effPath] = rec
	}

	return snap
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../")
}
