// Package config provides configuration management for modelsync.
//
// Config file locations (priority order):
//  1. $MODELSYNC_CONFIG
//  2. ./modelsync.yaml
//  3. $XDG_CONFIG_HOME/modelsync/config.yaml
//  4. ~/.config/modelsync/config.yaml
//  5. /etc/modelsync/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBusyTimeout is how long the journal waits on a locked database
const DefaultBusyTimeout = 5 * time.Second

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
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
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns defaults for a run without a config file
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Replication.Mode == "" {
		c.Replication.Mode = ModeMirror
	}
	if c.Journal.Path == "" {
		c.Journal.Path = "./modelsync.db"
	}
	if c.Journal.Stream == "" {
		c.Journal.Stream = "source"
	}
	if c.Journal.BusyTimeout == nil {
		d := Duration(DefaultBusyTimeout)
		c.Journal.BusyTimeout = &d
	}
}

// Validate rejects settings no run can use
func (c *Config) Validate() error {
	if !c.Replication.Mode.Valid() {
		return fmt.Errorf("replication.mode: unknown mode %q", c.Replication.Mode)
	}
	if c.Logging.Verbosity < 0 {
		return fmt.Errorf("logging.verbosity: must not be negative")
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Mode: %s, Compose: %t", c.Replication.Mode, c.Replication.Compose)
	if c.Replication.Label != "" {
		summary += fmt.Sprintf(", Label: %s", c.Replication.Label)
	}
	if c.Journal.Enabled {
		summary += fmt.Sprintf("\nJournal: %s (stream %s)", c.Journal.Path, c.Journal.Stream)
	} else {
		summary += "\nJournal: disabled"
	}
	summary += fmt.Sprintf("\nVerbosity: %d", c.Logging.Verbosity)
	return summary
}
