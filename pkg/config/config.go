package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const ConfigFileName = ".issue-insight.yml"

// Config holds optional defaults for the analyzer. Command-line flags
// always take precedence over configured values.
type Config struct {
	Defaults DefaultsConfig `yaml:"defaults"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DefaultsConfig represents default values for the analyze command
type DefaultsConfig struct {
	Limit       int    `yaml:"limit,omitempty"`
	Format      string `yaml:"format,omitempty"`
	State       string `yaml:"state,omitempty"`
	Granularity string `yaml:"granularity,omitempty"`
}

// MetricsConfig tunes the metrics analyzer
type MetricsConfig struct {
	TopLabelLimit           int     `yaml:"top_label_limit,omitempty"`
	ActiveUserLimit         int     `yaml:"active_user_limit,omitempty"`
	TrendingGrowthThreshold float64 `yaml:"trending_growth_threshold,omitempty"`
	TrendingMinOccurrences  int     `yaml:"trending_min_occurrences,omitempty"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Limit:       100,
			Format:      "table",
			Granularity: "auto",
		},
	}
}

// Load loads configuration from the nearest config file, falling back
// to the built-in defaults when no file exists.
func Load() (*Config, error) {
	configPath := findConfigFile()
	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return config, nil
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// findConfigFile searches current and parent directories, then the
// home directory, for the config file.
func findConfigFile() string {
	dir, err := os.Getwd()
	if err == nil {
		for {
			configPath := filepath.Join(dir, ConfigFileName)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}

			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		configPath := filepath.Join(home, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	return ""
}

// Exists checks if a configuration file exists
func Exists() bool {
	return findConfigFile() != ""
}
