// Package manifest models the plugin snapshot: which modules are built
// into this release, at which effective versions, and how that set is
// persisted between runs as a release asset.
package manifest

import (
	"sort"
)

// Record is one plugin's resolved state. The field names are an
// external contract: previously published manifest.json files must
// parse back into the same shape.
type Record struct {
	// OriginalPath is the import path as required by this module.
	// xcaddy needs it on the left side of a --with mapping when a
	// replace directive redirected the module.
	OriginalPath string `json:"OriginalPath"`

	// Version is the effective version (the replacement's, if replaced).
	Version string `json:"Version"`

	// Time is the effective commit timestamp, ISO-8601 UTC, possibly empty.
	Time string `json:"Time"`

	// IsReplaced reports whether a non-local replace directive applied.
	IsReplaced bool `json:"IsReplaced"`

	// ReplacePath is the effective path when replaced, nil otherwise.
	ReplacePath *string `json:"ReplacePath"`
}

// Core identifies the distinguished core dependency, tracked apart
// from the plugin mapping.
type Core struct {
	Path    string
	Version string
}

// Snapshot is the normalized view of one run's dependency graph:
// plugins keyed by effective path, plus at most one core reference.
type Snapshot struct {
	Plugins map[string]Record
	Core    *Core
}

// SortedPaths returns the plugin keys in lexicographic order. Both the
// status table and the xcaddy argument string iterate in this order.
func (s *Snapshot) SortedPaths() []string {
	paths := make([]string, 0, len(s.Plugins))
	for p := range s.Plugins {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
