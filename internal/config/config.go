// Package config provides configuration management for NutriApp.
//
// Config file locations (priority order):
//  1. $NUTRIAPP_CONFIG
//  2. ./nutriapp.yaml
//  3. $XDG_CONFIG_HOME/nutriapp/config.yaml
//  4. ~/.config/nutriapp/config.yaml
//  5. /etc/nutriapp/config.yaml
//
// When no file exists the defaults apply.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultAddr         = ":3000"
	DefaultDatabasePath = "./nutriapp.db"
	DefaultQueueSize    = 64
	DefaultWriteTimeout = 30 * time.Second
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
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

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Seed.Defaults == nil {
		c.Seed.Defaults = boolPtr(true)
	}
	if c.Writer.QueueSize == 0 {
		c.Writer.QueueSize = DefaultQueueSize
	}
	if c.Writer.Timeout == nil {
		d := Duration(DefaultWriteTimeout)
		c.Writer.Timeout = &d
	}
	if c.Metrics.Enabled == nil {
		c.Metrics.Enabled = boolPtr(true)
	}
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	if c.Writer.QueueSize < 0 {
		return fmt.Errorf("writer.queue_size must not be negative, got %d", c.Writer.QueueSize)
	}
	if c.Writer.Timeout != nil && c.Writer.Timeout.Duration() <= 0 {
		return fmt.Errorf("writer.timeout must be positive, got %s", c.Writer.Timeout.Duration())
	}
	if c.Seed.Watch && c.Seed.Path == "" {
		return fmt.Errorf("seed.watch requires seed.path")
	}
	return nil
}

// SeedDefaults reports whether a new database gets the default ingredients
func (c *Config) SeedDefaults() bool {
	return c.Seed.Defaults == nil || *c.Seed.Defaults
}

// MetricsEnabled reports whether /metrics is served
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}

// WriteTimeout returns the per-write timeout
func (c *Config) WriteTimeout() time.Duration {
	if c.Writer.Timeout == nil {
		return DefaultWriteTimeout
	}
	return c.Writer.Timeout.Duration()
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Addr: %s, Database: %s\n", c.Server.Addr, c.Database.Path)
	summary += fmt.Sprintf("Writer: queue %d, timeout %s\n", c.Writer.QueueSize, c.WriteTimeout())

	seed := "none"
	if c.Seed.Path != "" {
		seed = c.Seed.Path
		if c.Seed.Watch {
			seed += " (watched)"
		}
	}
	summary += fmt.Sprintf("Seed: %s, defaults: %t, metrics: %t", seed, c.SeedDefaults(), c.MetricsEnabled())

	return summary
}

func boolPtr(b bool) *bool {
	return &b
}
