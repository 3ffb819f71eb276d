// Package config provides configuration loading and management for packcheck.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete packcheck configuration
type Config struct {
	Specs SpecsConfig `yaml:"specs"`
	Run   RunConfig   `yaml:"run"`
	Watch WatchConfig `yaml:"watch"`
	Log   LogConfig   `yaml:"log"`
}

// SpecsConfig configures specification discovery
type SpecsConfig struct {
	// Patterns are the glob patterns used to find spec files (default: **/*.yml, **/*.yaml)
	Patterns []string `yaml:"patterns"`
}

// RunConfig configures run behavior
type RunConfig struct {
	// HostTag is the filter tag identifying this implementation (default: "go")
	HostTag string `yaml:"host_tag"`
	// Color controls styled output: "auto", "always", or "never"
	Color string `yaml:"color"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	// Debounce is how long to wait after a file event before re-running
	Debounce time.Duration `yaml:"debounce"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is the slog level: debug, info, warn, error
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Specs: SpecsConfig{
			Patterns: []string{"**/*.yml", "**/*.yaml"},
		},
		Run: RunConfig{
			HostTag: "go",
			Color:   "auto",
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if len(c.Specs.Patterns) == 0 {
		return fmt.Errorf("specs.patterns is required")
	}
	if c.Run.HostTag == "" {
		return fmt.Errorf("run.host_tag is required")
	}
	switch c.Run.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("run.color must be auto, always, or never")
	}
	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("watch.debounce must be positive")
	}
	return nil
}

// Merge overlays non-zero fields of other onto c
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if len(other.Specs.Patterns) > 0 {
		c.Specs.Patterns = other.Specs.Patterns
	}
	if other.Run.HostTag != "" {
		c.Run.HostTag = other.Run.HostTag
	}
	if other.Run.Color != "" {
		c.Run.Color = other.Run.Color
	}
	if other.Watch.Debounce > 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
