// Package config holds the runner configuration: browser host endpoint, task
// identity, navigation constraints and logging verbosity. Configuration is
// loaded from a YAML file with CLI flags layered on top by the caller.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config represents the full runner configuration
type Config struct {
	// Browser host connection
	Host HostConfig `yaml:"host"`

	// Task identity; page names are namespaced by the task ID
	Task TaskConfig `yaml:"task"`

	// Navigation constraints
	Navigation NavigationConfig `yaml:"navigation"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`
}

// HostConfig defines how to reach the browser host process
type HostConfig struct {
	// URL is the host's HTTP endpoint, e.g. http://127.0.0.1:9224
	URL string `yaml:"url"`

	// ConnectTimeout bounds the initial handshake including retries
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// TaskConfig identifies the owning task
type TaskConfig struct {
	// ID namespaces logical page names. Generated when empty.
	ID string `yaml:"id"`
}

// NavigationConfig defines the navigation allow-list
type NavigationConfig struct {
	// AllowedHosts are glob patterns over hostnames, e.g. "*.example.com".
	// Empty means every host is allowed.
	AllowedHosts []string `yaml:"allowed_hosts"`

	// DeniedHosts take precedence over AllowedHosts
	DeniedHosts []string `yaml:"denied_hosts"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host: HostConfig{
			URL:            "http://127.0.0.1:9224",
			ConnectTimeout: 30 * time.Second,
		},
		Task: TaskConfig{
			ID: uuid.NewString(),
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
}

// Load reads configuration from a YAML file, layered over the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.Task.ID == "" {
		config.Task.ID = uuid.NewString()
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Host.URL == "" {
		return fmt.Errorf("host url is required")
	}
	if c.Task.ID == "" {
		return fmt.Errorf("task id is required")
	}
	switch c.Logging.Verbosity {
	case "", "quiet", "normal", "verbose", "debug":
	default:
		return fmt.Errorf("invalid verbosity: %s (must be quiet, normal, verbose or debug)", c.Logging.Verbosity)
	}
	if _, err := c.Navigation.Matcher(); err != nil {
		return err
	}
	return nil
}
