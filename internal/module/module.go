// Package module loads module descriptors and locates module roots.
package module

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/wizzomafizzo/filefilter/internal/constants"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoModule indicates the directory has no module descriptor.
	ErrNoModule = errors.New("no module descriptor found")
	// ErrInvalidModule indicates a descriptor that failed validation.
	ErrInvalidModule = errors.New("invalid module descriptor")
)

// Module describes the module that owns the files being packaged.
type Module struct {
	Name             string   `yaml:"name"`
	Path             string   `yaml:"-"`
	Packages         []string `yaml:"packages,omitempty"`
	DefaultPlatforms []string `yaml:"platforms,omitempty"`
}

// Load reads the descriptor in dir.
func Load(fs afero.Fs, dir string) (*Module, error) {
	descriptor := filepath.Join(dir, constants.ModuleFilename)

	data, err := afero.ReadFile(fs, descriptor)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w in %s", ErrNoModule, dir)
		}
		return nil, fmt.Errorf("failed to read module descriptor: %w", err)
	}

	mod, err := Parse(data)
	if err != nil {
		return nil, err
	}
	mod.Path = dir

	return mod, nil
}

// Parse decodes and validates a descriptor.
func Parse(data []byte) (*Module, error) {
	var mod Module
	if err := yaml.Unmarshal(data, &mod); err != nil {
		return nil, fmt.Errorf("failed to parse module descriptor: %w", err)
	}

	if err := mod.Validate(); err != nil {
		return nil, err
	}

	return &mod, nil
}

// Validate checks required descriptor fields.
func (m *Module) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidModule)
	}
	return nil
}

// SupportsPlatform reports whether the module builds for platform.
// Modules that list no platforms support all of them. Names compare
// case-insensitively.
func (m *Module) SupportsPlatform(platform string) bool {
	if len(m.DefaultPlatforms) == 0 {
		return true
	}
	for _, p := range m.DefaultPlatforms {
		if strings.EqualFold(p, platform) {
			return true
		}
	}
	return false
}

// FindRoot searches start and its parents for a module descriptor.
func FindRoot(fs afero.Fs, start string) (string, bool) {
	currentDir := filepath.Clean(start)

	for {
		if ok, _ := afero.Exists(fs, filepath.Join(currentDir, constants.ModuleFilename)); ok {
			return currentDir, true
		}

		parentDir := filepath.Dir(currentDir)

		// Stop if we've reached the filesystem root
		if parentDir == currentDir {
			break
		}

		currentDir = parentDir
	}

	return "", false
}

// Discover finds the module root above start and loads it.
// A nil module with nil error means start is not inside a module.
func Discover(fs afero.Fs, start string) (*Module, error) {
	root, found := FindRoot(fs, start)
	if !found {
		return nil, nil
	}
	return Load(fs, root)
}
