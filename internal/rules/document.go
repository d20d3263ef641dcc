// Package rules loads packaging rule documents and applies them to a filter.
package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/wizzomafizzo/filefilter/internal/filter"
	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyDocument indicates a rules document without rules.
	ErrEmptyDocument = errors.New("rules document must contain at least one rule")
	// ErrInvalidRule indicates a rule that does not name exactly one directive.
	ErrInvalidRule = errors.New("invalid rule")
	// ErrUnknownFormat indicates a rules file extension with no decoder.
	ErrUnknownFormat = errors.New("unknown rules format")
)

// Format selects the document decoder.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Directive names as they appear in documents and logs.
const (
	DirectiveInclude          = "include"
	DirectiveExclude          = "exclude"
	DirectiveRewrite          = "rewrite"
	DirectiveMap              = "map"
	DirectiveAutoProject      = "autoproject"
	DirectiveImplyDirectories = "imply_directories"
)

// Document is an ordered list of packaging rules.
type Document struct {
	Rules []Rule `yaml:"rules" toml:"rules"`
}

// Rule holds exactly one directive.
type Rule struct {
	Rewrite          *Rewrite `yaml:"rewrite,omitempty" toml:"rewrite,omitempty"`
	Map              *Mapping `yaml:"map,omitempty" toml:"map,omitempty"`
	Include          string   `yaml:"include,omitempty" toml:"include,omitempty"`
	Exclude          string   `yaml:"exclude,omitempty" toml:"exclude,omitempty"`
	Platforms        []string `yaml:"platforms,omitempty" toml:"platforms,omitempty"`
	AutoProject      bool     `yaml:"autoproject,omitempty" toml:"autoproject,omitempty"`
	ImplyDirectories bool     `yaml:"imply_directories,omitempty" toml:"imply_directories,omitempty"`
}

// Rewrite substitutes Find with Replace in destinations.
type Rewrite struct {
	Find    string `yaml:"find" toml:"find"`
	Replace string `yaml:"replace" toml:"replace"`
}

// Mapping adds a source to destination mapping directly.
type Mapping struct {
	Source      string `yaml:"source" toml:"source"`
	Destination string `yaml:"destination" toml:"destination"`
}

// Load reads and validates the rules document at path.
func Load(fs afero.Fs, path string) (*Document, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// FormatFor picks the format from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Parse decodes and validates a rules document. Unknown keys are rejected.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse rules: %w", err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse rules: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("rules validation failed: %w", err)
	}

	return &doc, nil
}

// Validate checks every rule and compiles its patterns.
func (d *Document) Validate() error {
	if len(d.Rules) == 0 {
		return ErrEmptyDocument
	}

	for i := range d.Rules {
		if err := d.Rules[i].Validate(); err != nil {
			return fmt.Errorf("rule %d: %w", i+1, err)
		}
	}

	return nil
}

// Validate checks that the rule names exactly one directive with valid patterns.
func (r *Rule) Validate() error {
	var set []string
	if r.Include != "" {
		set = append(set, DirectiveInclude)
	}
	if r.Exclude != "" {
		set = append(set, DirectiveExclude)
	}
	if r.Rewrite != nil {
		set = append(set, DirectiveRewrite)
	}
	if r.Map != nil {
		set = append(set, DirectiveMap)
	}
	if r.AutoProject {
		set = append(set, DirectiveAutoProject)
	}
	if r.ImplyDirectories {
		set = append(set, DirectiveImplyDirectories)
	}

	switch len(set) {
	case 0:
		return fmt.Errorf("%w: no directive", ErrInvalidRule)
	case 1:
	default:
		return fmt.Errorf("%w: multiple directives (%s)", ErrInvalidRule, strings.Join(set, ", "))
	}

	switch {
	case r.Include != "":
		return compile(r.Include)
	case r.Exclude != "":
		return compile(r.Exclude)
	case r.Rewrite != nil:
		if r.Rewrite.Find == "" {
			return fmt.Errorf("%w: rewrite find is required", ErrInvalidRule)
		}
		return compile(r.Rewrite.Find)
	case r.Map != nil:
		if r.Map.Source == "" || r.Map.Destination == "" {
			return fmt.Errorf("%w: map requires source and destination", ErrInvalidRule)
		}
	}

	return nil
}

// Directive returns the directive name of a valid rule.
func (r *Rule) Directive() string {
	switch {
	case r.Include != "":
		return DirectiveInclude
	case r.Exclude != "":
		return DirectiveExclude
	case r.Rewrite != nil:
		return DirectiveRewrite
	case r.Map != nil:
		return DirectiveMap
	case r.AutoProject:
		return DirectiveAutoProject
	case r.ImplyDirectories:
		return DirectiveImplyDirectories
	default:
		return ""
	}
}

// AppliesTo reports whether the rule runs for platform.
func (r *Rule) AppliesTo(platform string) bool {
	if len(r.Platforms) == 0 {
		return true
	}
	for _, p := range r.Platforms {
		if strings.EqualFold(p, platform) {
			return true
		}
	}
	return false
}

func compile(pattern string) error {
	_, err := filter.Compile(pattern)
	return err //nolint:wrapcheck // already carries the pattern
}
