// Package autoproject detects a module's project type and selects its files.
package autoproject

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/wizzomafizzo/filefilter/internal/filter"
	"github.com/wizzomafizzo/filefilter/internal/module"
)

var (
	// ErrNoProjectDetected indicates the module root has no known project marker.
	ErrNoProjectDetected = errors.New("no project type detected")
	// ErrUnsupportedPlatform indicates the module does not build for the platform.
	ErrUnsupportedPlatform = errors.New("module does not support platform")
)

// Kind is one detectable project type.
type Kind struct {
	Name     string
	Marker   string // glob matched against the module root
	Includes []string
	Excludes []string
}

// DefaultKinds are checked in order; every kind whose marker is present is applied.
var DefaultKinds = []Kind{
	{
		Name:     "csharp",
		Marker:   "*.csproj",
		Includes: []string{`\.(cs|csproj|resx)$`},
		Excludes: []string{`(^|/)(bin|obj)/`},
	},
	{
		Name:     "go",
		Marker:   "go.mod",
		Includes: []string{`\.go$`, `^go\.(mod|sum)$`},
		Excludes: []string{`_test\.go$`},
	},
	{
		Name:     "node",
		Marker:   "package.json",
		Includes: []string{`\.(js|mjs|cjs|json)$`},
		Excludes: []string{`(^|/)node_modules/`},
	},
}

// Packager implements filter.AutoProjecter by inspecting the module root.
type Packager struct {
	fs     afero.Fs
	logger zerolog.Logger
	kinds  []Kind
}

// New creates a packager using DefaultKinds.
func New(fs afero.Fs, logger zerolog.Logger) *Packager {
	return &Packager{fs: fs, logger: logger, kinds: DefaultKinds}
}

// WithKinds returns a copy of p that detects kinds instead of DefaultKinds.
func (p *Packager) WithKinds(kinds []Kind) *Packager {
	clone := *p
	clone.kinds = kinds
	return &clone
}

// Detect returns the kinds whose marker exists at the module root.
func (p *Packager) Detect(mod *module.Module) ([]Kind, error) {
	var detected []Kind
	for _, kind := range p.kinds {
		matches, err := afero.Glob(p.fs, filepath.Join(mod.Path, kind.Marker))
		if err != nil {
			return nil, fmt.Errorf("failed to check marker %s: %w", kind.Marker, err)
		}
		if len(matches) > 0 {
			detected = append(detected, kind)
		}
	}
	return detected, nil
}

// AutoProject applies the include and exclude rules of every detected kind.
func (p *Packager) AutoProject(d filter.Directives, mod *module.Module, platform string) error {
	if !mod.SupportsPlatform(platform) {
		return fmt.Errorf("%w: %s does not build for %s", ErrUnsupportedPlatform, mod.Name, platform)
	}

	kinds, err := p.Detect(mod)
	if err != nil {
		return err
	}
	if len(kinds) == 0 {
		return fmt.Errorf("%w in module %s", ErrNoProjectDetected, mod.Name)
	}

	applied := make(map[string]struct{})
	for _, kind := range kinds {
		p.logger.Debug().
			Str("module", mod.Name).
			Str("platform", platform).
			Str("kind", kind.Name).
			Msg("Detected project kind")

		for _, pattern := range kind.Includes {
			// Overlapping includes would fail with a duplicate key.
			if _, ok := applied[pattern]; ok {
				continue
			}
			applied[pattern] = struct{}{}

			if _, err := d.ApplyInclude(pattern); err != nil {
				return fmt.Errorf("%s include %s: %w", kind.Name, pattern, err)
			}
		}
	}

	// Excludes run after every include so they see the whole selection.
	for _, kind := range kinds {
		for _, pattern := range kind.Excludes {
			if _, err := d.ApplyExclude(pattern); err != nil {
				return fmt.Errorf("%s exclude %s: %w", kind.Name, pattern, err)
			}
		}
	}

	return nil
}
