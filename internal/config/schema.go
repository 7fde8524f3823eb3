package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Seed     SeedConfig     `yaml:"seed"`
	Writer   WriterConfig   `yaml:"writer"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SeedConfig controls the data loaded into the catalog at startup
type SeedConfig struct {
	Path     string `yaml:"path,omitempty"` // catalog file imported at startup
	Watch    bool   `yaml:"watch"`          // re-import when Path changes
	Defaults *bool  `yaml:"defaults"`       // nil = true
}

// WriterConfig tunes the background write worker
type WriterConfig struct {
	QueueSize int       `yaml:"queue_size"`
	Timeout   *Duration `yaml:"timeout,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled *bool `yaml:"enabled"` // nil = true
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
