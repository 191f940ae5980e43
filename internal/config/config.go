// Package config loads the reflow.json configuration used by the reflow CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "reflow.json"

	// DefaultAddr is the default serve address.
	DefaultAddr = "localhost:3000"

	// DefaultMetricsAddr is the default Prometheus endpoint address.
	DefaultMetricsAddr = "localhost:9090"
)

// Config is the reflow.json schema.
type Config struct {
	// Addr is the address the demo host listens on.
	Addr string `json:"addr,omitempty"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Host configures session transport limits.
	Host HostConfig `json:"host,omitempty"`

	// Debug enables debug-level logging.
	Debug bool `json:"debug,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled turns the /metrics endpoint on.
	Enabled bool `json:"enabled,omitempty"`

	// Addr is the endpoint address.
	Addr string `json:"addr,omitempty"`
}

// HostConfig configures session transport limits.
type HostConfig struct {
	// ReadTimeoutSeconds bounds connection silence.
	ReadTimeoutSeconds int `json:"readTimeoutSeconds,omitempty"`

	// WriteTimeoutSeconds bounds each frame write.
	WriteTimeoutSeconds int `json:"writeTimeoutSeconds,omitempty"`

	// EventQueueSize bounds the per-session inbound event queue.
	EventQueueSize int `json:"eventQueueSize,omitempty"`
}

// Default returns the configuration used when no reflow.json exists.
func Default() *Config {
	return &Config{
		Addr: DefaultAddr,
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    DefaultMetricsAddr,
		},
		Host: HostConfig{
			ReadTimeoutSeconds:  60,
			WriteTimeoutSeconds: 10,
			EventQueueSize:      64,
		},
	}
}

// Load reads reflow.json from dir, falling back to defaults when the file
// does not exist. Fields omitted from the file keep their defaults.
func Load(dir string) (*Config, error) {
	return LoadFrom(filepath.Join(dir, ConfigFileName))
}

// LoadFrom reads the configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return config, nil
}

// ReadTimeout returns the configured read timeout as a duration.
func (c *HostConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the configured write timeout as a duration.
func (c *HostConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}
