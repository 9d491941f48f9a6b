// Package report renders the release notes (change bullets plus plugin
// status table) and the xcaddy argument string from a normalized
// snapshot and the previous run's manifest.
package report

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ivanphz/my-custom-caddy/internal/config"
	"github.com/ivanphz/my-custom-caddy/internal/manifest"
)

const noUpdatesLine = "- No plugin updates detected in this build."

// Generator renders all run outputs. It holds no state beyond config.
type Generator struct {
	cfg *config.Config
	log *zap.Logger
}

// New builds a Generator. A nil logger is replaced with a nop.
func New(cfg *config.Config, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{cfg: cfg, log: log}
}

// Notes renders the markdown release notes: the change log against the
// previous manifest, then the status table of everything installed.
func (g *Generator) Notes(snap *manifest.Snapshot, previous map[string]manifest.Record) string {
	lines := []string{"### 📦 Plugin Changes\n"}
	lines = append(lines, g.changeLines(snap, previous)...)

	lines = append(lines,
		"\n### 🔌 Installed Plugins Status\n",
		"| Plugin | Version | Last Commit (Beijing) |",
		"| :--- | :--- | :--- |",
	)
	for _, path := range snap.SortedPaths() {
		rec := snap.Plugins[path]
		lines = append(lines, fmt.Sprintf("| [%s](https://%s) | `%s` | %s |",
			lastSegment(path), path, DisplayVersion(rec.Version), g.formatTime(rec.Time)))
	}

	return strings.Join(lines, "\n")
}

// changeLines applies the per-plugin change rule. A plugin absent from
// the previous manifest compares against the N/A sentinel, so a
// first-time plugin surfaces as `N/A` -> `version`.
func (g *Generator) changeLines(snap *manifest.Snapshot, previous map[string]manifest.Record) []string {
	var lines []string

	for _, path := range snap.SortedPaths() {
		rec := snap.Plugins[path]
		prev, hadPrev := previous[path]

		prevVersion := notAvailable
		if hadPrev {
			prevVersion = prev.Version
		}

		switch {
		case rec.Version != prevVersion:
			lines = append(lines, fmt.Sprintf("- **%s**: `%s` -> `%s`",
				lastSegment(path), DisplayVersion(prevVersion), DisplayVersion(rec.Version)))
		default:
			// Same version; a moved commit date still counts as an
			// update (replace targets tracking a branch).
			currDate := g.formatDate(rec.Time)
			prevDate := g.formatDate(prev.Time)
			if currDate != prevDate && prevDate != notAvailable {
				lines = append(lines, fmt.Sprintf("- **%s**: Update from %s to %s",
					lastSegment(path), prevDate, currDate))
			}
		}
	}

	if len(lines) == 0 {
		g.log.Info("no plugin changes detected")
		return []string{noUpdatesLine}
	}
	g.log.Info("plugin changes detected", zap.Int("count", len(lines)))
	return lines
}

// BuildArgs renders the xcaddy --with argument string. Token syntax is
// an external contract: `--with path@version`, or for replaced modules
// `--with originalPath=effectivePath@version`. Tokens follow the same
// sorted order as the status table and are joined by single spaces.
func (g *Generator) BuildArgs(snap *manifest.Snapshot) string {
	var tokens []string
	for _, path := range snap.SortedPaths() {
		rec := snap.Plugins[path]
		if rec.IsReplaced {
			tokens = append(tokens, fmt.Sprintf("--with %s=%s@%s", rec.OriginalPath, path, rec.Version))
		} else {
			tokens = append(tokens, fmt.Sprintf("--with %s@%s", path, rec.Version))
		}
	}
	return strings.Join(tokens, " ")
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
