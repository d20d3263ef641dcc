package app

import (
	"path/filepath"

	"github.com/wizzomafizzo/filefilter/internal/config"
)

// AppOptions contains configuration options for creating an App
type AppOptions struct {
	// Dir is the folder being packaged; candidates are relative to it.
	Dir string
	// RulesPath is resolved against Dir when relative.
	RulesPath string
	Platform  string
	// DatabasePath overrides the XDG manifest history location.
	DatabasePath string
	Strict       bool
	History      bool
}

// OptionsFromConfig fills options from loaded configuration.
func OptionsFromConfig(cfg *config.Config, dir string) AppOptions {
	return AppOptions{
		Dir:       dir,
		RulesPath: cfg.Rules,
		Platform:  cfg.Platform,
		Strict:    cfg.Strict,
		History:   cfg.History,
	}
}

func (o AppOptions) rulesPath() string {
	if filepath.IsAbs(o.RulesPath) {
		return o.RulesPath
	}
	return filepath.Join(o.dir(), o.RulesPath)
}

func (o AppOptions) dir() string {
	if o.Dir == "" {
		return "."
	}
	return o.Dir
}
