package config

import (
	"fmt"

	"github.com/wizzomafizzo/filefilter/internal/constants"
	"gopkg.in/yaml.v3"
)

func defaults() map[string]any {
	return map[string]any{
		"platform":  constants.DefaultPlatform,
		"rules":     constants.RulesPath,
		"log.level": "info",
		"history":   true,
		"strict":    false,
	}
}

// DefaultConfig returns the default filefilter configuration
func DefaultConfig() *Config {
	return &Config{
		Platform: constants.DefaultPlatform,
		Rules:    constants.RulesPath,
		Log:      Logging{Level: "info"},
		History:  true,
	}
}

// DefaultConfigYAML returns the default configuration as YAML bytes
func DefaultConfigYAML() ([]byte, error) {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal default config to YAML: %w", err)
	}
	return data, nil
}
