package report

import (
	"fmt"
	"regexp"
	"time"
)

// notAvailable is the rendering for missing or unparsable timestamps
// and for the previous version of a first-time plugin.
const notAvailable = "N/A"

// pseudoVersionHash matches the trailing commit hash of a Go
// pseudo-version such as v0.0.0-20231130002422-f53b62aa13cb.
var pseudoVersionHash = regexp.MustCompile(`-([a-f0-9]{12})$`)

// DisplayVersion shortens a pseudo-version to its commit hash for
// display. Comparison always happens on raw version strings; this is
// cosmetic only.
func DisplayVersion(version string) string {
	if m := pseudoVersionHash.FindStringSubmatch(version); m != nil {
		return fmt.Sprintf("Commit: %s", m[1][:7])
	}
	return version
}

// formatTime renders an ISO-8601 UTC timestamp in the display zone as
// "2006-01-02 15:04:05". Empty or unparsable input renders as N/A.
func (g *Generator) formatTime(iso string) string {
	t, ok := g.parse(iso)
	if !ok {
		return notAvailable
	}
	return t.Format("2006-01-02 15:04:05")
}

// formatDate is the date-only form used for update comparison.
func (g *Generator) formatDate(iso string) string {
	t, ok := g.parse(iso)
	if !ok {
		return notAvailable
	}
	return t.Format("2006-01-02")
}

func (g *Generator) parse(iso string) (time.Time, bool) {
	if iso == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return time.Time{}, false
	}
	return t.In(g.cfg.DisplayZone), true
}
