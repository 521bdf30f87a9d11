// Package config provides configuration management for propgraph.
//
// The config file carries the durable settings of an installation
// (database path, symbol definition files, evaluation defaults); flags
// on the command line override it per run.
//
// Config file locations (priority order):
//  1. $PROPGRAPH_CONFIG
//  2. ./propgraph.yaml
//  3. ~/.config/propgraph/config.yaml
//  4. /etc/propgraph/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration.
type Config struct {
	Version    int              `yaml:"version"`
	Database   DatabaseConfig   `yaml:"database"`
	Symbols    SymbolsConfig    `yaml:"symbols"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
}

// DatabaseConfig locates the persistence arena.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SymbolsConfig lists extra symbol definition files loaded on top of
// the built-in registry.
type SymbolsConfig struct {
	Definitions []string `yaml:"definitions,omitempty"`
}

// EvaluationConfig carries evaluation defaults.
type EvaluationConfig struct {
	Workers int    `yaml:"workers"`
	Format  string `yaml:"format"`
}

// Load finds and loads the config file, or returns defaults if none found.
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation.
func DefaultConfig() *Config {
	return &Config{
		Version:    1,
		Database:   DatabaseConfig{Path: "./propgraph.db"},
		Evaluation: EvaluationConfig{Workers: 4, Format: "yaml"},
	}
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Evaluation.Workers == 0 {
		c.Evaluation.Workers = 4
	}
	if c.Evaluation.Format == "" {
		c.Evaluation.Format = "yaml"
	}
}

func (c *Config) validate() error {
	switch c.Evaluation.Format {
	case "json", "yaml", "yml":
	default:
		return fmt.Errorf("unknown output format %q", c.Evaluation.Format)
	}
	if c.Evaluation.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Evaluation.Workers)
	}
	return nil
}
