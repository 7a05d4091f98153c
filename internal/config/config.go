// Package config loads the YAML configuration for the notary commands.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	DataDir       string `yaml:"dataDir"`
	Difficulty    uint32 `yaml:"difficulty"`
	MinimumFreeGB int    `yaml:"minimumFreeGB"`
	LogLevel      string `yaml:"logLevel"`
}

func Default() Config {
	var config Config
	config.applyDefaults()
	return config
}

// Load reads the YAML configuration at path. An empty path returns the
// defaults without touching the filesystem.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	config.applyDefaults()
	return config, nil
}

// Difficulty and MinimumFreeGB keep their zero values: proof-of-work and
// the free-space guard are off unless configured.
func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "notary-data"
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
