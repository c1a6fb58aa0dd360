package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version     int               `yaml:"version"`
	Replication ReplicationConfig `yaml:"replication"`
	Journal     JournalConfig     `yaml:"journal"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ReplicationConfig describes how replicas are wired
type ReplicationConfig struct {
	Mode Mode `yaml:"mode"`
	// Label is the producer label of the replica forest. Empty gets a
	// fresh ULID.
	Label   string `yaml:"label,omitempty"`
	Compose bool   `yaml:"compose"` // replay composites inside compositor frames
}

// JournalConfig holds notification journal settings
type JournalConfig struct {
	Enabled     bool      `yaml:"enabled"`
	Path        string    `yaml:"path"`
	Stream      string    `yaml:"stream,omitempty"`
	BusyTimeout *Duration `yaml:"busy_timeout,omitempty"`
}

// LoggingConfig maps onto glog flags
type LoggingConfig struct {
	Verbosity int  `yaml:"verbosity"`
	Stderr    bool `yaml:"stderr"`
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

// Duration returns the time.Duration value
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
