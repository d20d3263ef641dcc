package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/wizzomafizzo/filefilter/internal/logging"
)

// EnvPrefix prefixes environment overrides, e.g. FILEFILTER_LOG_LEVEL.
const EnvPrefix = "FILEFILTER"

type Config struct {
	Platform string  `yaml:"platform" mapstructure:"platform"`
	Rules    string  `yaml:"rules" mapstructure:"rules"`
	Log      Logging `yaml:"log" mapstructure:"log"`
	History  bool    `yaml:"history" mapstructure:"history"`
	Strict   bool    `yaml:"strict" mapstructure:"strict"`
}

type Logging struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// Load reads path if it exists, applies defaults and environment overrides,
// and validates the result. A missing file is not an error.
func Load(fs afero.Fs, path string) (*Config, error) {
	viperInstance := newViper(fs)

	if path != "" {
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat config: %w", err)
		}
		if exists {
			viperInstance.SetConfigFile(path)
			if err := viperInstance.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	return decode(viperInstance)
}

// LoadFromYAML loads config from YAML bytes - helper for tests
func LoadFromYAML(data []byte) (*Config, error) {
	viperInstance := newViper(afero.NewMemMapFs())
	viperInstance.SetConfigType("yaml")

	if err := viperInstance.ReadConfig(strings.NewReader(string(data))); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return decode(viperInstance)
}

func newViper(fs afero.Fs) *viper.Viper {
	viperInstance := viper.New()
	viperInstance.SetFs(fs)

	for key, value := range defaults() {
		viperInstance.SetDefault(key, value)
	}

	viperInstance.SetEnvPrefix(EnvPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()

	return viperInstance
}

func decode(viperInstance *viper.Viper) (*Config, error) {
	var config Config
	if err := viperInstance.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate performs config validation
func (c *Config) Validate() error {
	if c.Platform == "" {
		return errors.New("platform is required and cannot be empty")
	}
	if c.Rules == "" {
		return errors.New("rules path is required and cannot be empty")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err //nolint:wrapcheck // already names the level
	}
	return nil
}
