// Package manifest turns the final filter mappings into a packaging manifest.
package manifest

import (
	"fmt"
	"slices"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
	"github.com/wizzomafizzo/filefilter/internal/filter"
)

// Manifest is the ordered (source, destination) list handed to emitters.
type Manifest struct {
	Entries []filter.Entry
}

// Conflict is a destination claimed by more than one source.
type Conflict struct {
	Destination string
	Sources     []string
}

// FromFilter snapshots the filter's mappings in source order.
func FromFilter(f *filter.Filter) Manifest {
	return Manifest{Entries: f.Entries()}
}

// New builds a manifest from entries, sorting them by source.
func New(entries []filter.Entry) Manifest {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b filter.Entry) int {
		return strings.Compare(a.Source, b.Source)
	})
	return Manifest{Entries: sorted}
}

// Files returns entries that are not implied directories.
func (m Manifest) Files() []filter.Entry {
	var files []filter.Entry
	for _, entry := range m.Entries {
		if !IsDirectory(entry) {
			files = append(files, entry)
		}
	}
	return files
}

// Directories returns the implied directory entries.
func (m Manifest) Directories() []filter.Entry {
	var dirs []filter.Entry
	for _, entry := range m.Entries {
		if IsDirectory(entry) {
			dirs = append(dirs, entry)
		}
	}
	return dirs
}

// IsDirectory reports whether entry is a "dir" -> "dir/" placeholder.
func IsDirectory(entry filter.Entry) bool {
	return entry.Destination == entry.Source+"/"
}

// Conflicts lists destinations that more than one source maps to.
// Rewrites may legitimately produce these; emitters decide whether to fail.
func (m Manifest) Conflicts() []Conflict {
	bySource := make(map[string][]string)
	for _, entry := range m.Entries {
		bySource[entry.Destination] = append(bySource[entry.Destination], entry.Source)
	}

	var conflicts []Conflict
	for destination, sources := range bySource {
		if len(sources) > 1 {
			conflicts = append(conflicts, Conflict{Destination: destination, Sources: sources})
		}
	}
	slices.SortFunc(conflicts, func(a, b Conflict) int {
		return strings.Compare(a.Destination, b.Destination)
	})
	return conflicts
}

// Format renders one "source -> destination" line per entry.
func (m Manifest) Format() string {
	var b strings.Builder
	for _, entry := range m.Entries {
		_, _ = fmt.Fprintf(&b, "%s -> %s\n", entry.Source, entry.Destination)
	}
	return b.String()
}

// Diff produces a unified diff between two manifests, empty when equal.
func Diff(oldName, newName string, previous, current Manifest) (string, error) {
	u := difflib.UnifiedDiff{
		A:        difflib.SplitLines(previous.Format()),
		B:        difflib.SplitLines(current.Format()),
		FromFile: oldName,
		ToFile:   newName,
		Context:  3,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", fmt.Errorf("failed to diff manifests: %w", err)
	}
	return s, nil
}
