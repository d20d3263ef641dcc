// Package filter selects source files for packaging and maps them to destination paths.
//
// A Filter starts from the candidate paths found in a project tree and an empty
// mapping set. Directives are applied in order: include adds identity mappings
// for matching candidates, exclude drops entries whose current destination
// matches, rewrite substitutes destinations in place. ImplyDirectories adds the
// directory entries implied by the final destinations.
//
// A Filter is not safe for concurrent use.
package filter

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/wizzomafizzo/filefilter/internal/module"
)

// Entry is one source to destination mapping.
type Entry struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
}

// Filter holds the candidate set and the working mapping set.
type Filter struct {
	packager   AutoProjecter
	module     *module.Module
	mappings   map[string]string
	platform   string
	candidates []string
}

// New creates a filter over candidates. mod may be nil when the packaged
// folder is not a module; only ApplyAutoProject requires it.
func New(packager AutoProjecter, mod *module.Module, platform string, candidates []string) *Filter {
	return &Filter{
		packager:   packager,
		module:     mod,
		platform:   platform,
		candidates: slices.Clone(candidates),
		mappings:   make(map[string]string),
	}
}

// AddManualMapping maps source to destination without consulting candidates.
func (f *Filter) AddManualMapping(source, destination string) error {
	if _, exists := f.mappings[source]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, source)
	}
	f.mappings[source] = destination
	return nil
}

// ApplyInclude maps every candidate matching pattern to itself and reports
// whether any candidate matched. Nothing is inserted when a matched candidate
// is already mapped.
func (f *Filter) ApplyInclude(pattern string) (bool, error) {
	re, err := Compile(pattern)
	if err != nil {
		return false, err
	}

	var matched []string
	seen := make(map[string]struct{})
	for _, candidate := range f.candidates {
		ok, err := matchString(re, candidate)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}

		_, mapped := f.mappings[candidate]
		_, twice := seen[candidate]
		if mapped || twice {
			return false, fmt.Errorf("%w: %s", ErrDuplicateKey, candidate)
		}

		seen[candidate] = struct{}{}
		matched = append(matched, candidate)
	}

	for _, candidate := range matched {
		f.mappings[candidate] = candidate
	}

	return len(matched) > 0, nil
}

// ApplyExclude removes every entry whose current destination matches pattern.
func (f *Filter) ApplyExclude(pattern string) (bool, error) {
	re, err := Compile(pattern)
	if err != nil {
		return false, err
	}

	var remove []string
	for source, destination := range f.mappings {
		ok, err := matchString(re, destination)
		if err != nil {
			return false, err
		}
		if ok {
			remove = append(remove, source)
		}
	}

	for _, source := range remove {
		delete(f.mappings, source)
	}

	return len(remove) > 0, nil
}

// ApplyRewrite replaces find with replace in every matching destination.
// Sources are never changed, so two sources may end up sharing a destination.
func (f *Filter) ApplyRewrite(find, replace string) (bool, error) {
	re, err := Compile(find)
	if err != nil {
		return false, err
	}

	rewritten := make(map[string]string)
	for _, entry := range f.Entries() {
		ok, err := matchString(re, entry.Destination)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}

		destination, err := replaceAll(re, entry.Destination, replace)
		if err != nil {
			return false, err
		}
		rewritten[entry.Source] = destination
	}

	for source, destination := range rewritten {
		f.mappings[source] = destination
	}

	return len(rewritten) > 0, nil
}

// ApplyAutoProject hands the directive surface to the auto-project packager.
func (f *Filter) ApplyAutoProject() error {
	if f.module == nil {
		return ErrNotInModule
	}
	if f.packager == nil {
		return ErrNoAutoProjecter
	}

	return f.packager.AutoProject(directives{f: f}, f.module, f.platform)
}

// ImplyDirectories adds a "dir" -> "dir/" entry for every directory along the
// current destinations. Directory entries already present are left alone; a
// directory that collides with a mapped file is a duplicate key.
func (f *Filter) ImplyDirectories() error {
	var needed []string
	seen := make(map[string]struct{})

	for _, entry := range f.Entries() {
		components := splitPath(entry.Destination)

		for i := range len(components) - 1 {
			dir := strings.Join(components[:i+1], "/")
			if _, ok := seen[dir]; ok || dir == "" {
				continue
			}
			seen[dir] = struct{}{}

			if destination, exists := f.mappings[dir]; exists {
				if destination == dir+"/" {
					continue
				}
				return fmt.Errorf("%w: directory %s is already mapped to %s", ErrDuplicateKey, dir, destination)
			}
			needed = append(needed, dir)
		}
	}

	for _, dir := range needed {
		f.mappings[dir] = dir + "/"
	}

	return nil
}

// All yields mappings in ascending source order.
func (f *Filter) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, entry := range f.Entries() {
			if !yield(entry.Source, entry.Destination) {
				return
			}
		}
	}
}

// Entries returns a snapshot of the mappings sorted by source.
func (f *Filter) Entries() []Entry {
	entries := make([]Entry, 0, len(f.mappings))
	for source, destination := range f.mappings {
		entries = append(entries, Entry{Source: source, Destination: destination})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Source, b.Source)
	})
	return entries
}

// Lookup returns the destination mapped for source.
func (f *Filter) Lookup(source string) (string, bool) {
	destination, ok := f.mappings[source]
	return destination, ok
}

// Len returns the number of mappings.
func (f *Filter) Len() int {
	return len(f.mappings)
}

// Candidates returns a copy of the candidate set.
func (f *Filter) Candidates() []string {
	return slices.Clone(f.candidates)
}

// Platform returns the target platform.
func (f *Filter) Platform() string {
	return f.platform
}

// Module returns the owning module, or nil.
func (f *Filter) Module() *module.Module {
	return f.module
}

// splitPath splits on both forward and back slashes, keeping empty components.
func splitPath(p string) []string {
	return strings.Split(strings.ReplaceAll(p, `\`, "/"), "/")
}

// directives restricts collaborators to the Directives methods of a Filter.
type directives struct {
	f *Filter
}

func (d directives) AddManualMapping(source, destination string) error {
	return d.f.AddManualMapping(source, destination)
}

func (d directives) ApplyInclude(pattern string) (bool, error) {
	return d.f.ApplyInclude(pattern)
}

func (d directives) ApplyExclude(pattern string) (bool, error) {
	return d.f.ApplyExclude(pattern)
}

func (d directives) ApplyRewrite(find, replace string) (bool, error) {
	return d.f.ApplyRewrite(find, replace)
}
