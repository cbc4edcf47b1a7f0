package config

import (
	"fmt"

	"github.com/kbukum/blockflow/observability"
	"github.com/kbukum/blockflow/server"
	"github.com/kbukum/blockflow/storage"
)

// ServiceName names the config files and env prefix the loader looks for.
const ServiceName = "blockflow"

// Config is the full blockflow process configuration.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// DefaultWorkspace is used by the CLI when --workspace is not given.
	DefaultWorkspace string               `yaml:"default_workspace" mapstructure:"default_workspace"`
	Storage          storage.Config       `yaml:"storage" mapstructure:"storage"`
	Server           server.Config        `yaml:"server" mapstructure:"server"`
	Observability    observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section's zero values.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.DefaultWorkspace == "" {
		c.DefaultWorkspace = "default"
	}
	c.Storage.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("config.storage: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("config.observability: %w", err)
	}
	return nil
}

// ServiceInfo returns the telemetry identity of this process.
func (c *Config) ServiceInfo() observability.ServiceInfo {
	return observability.ServiceInfo{
		Name:        c.Name,
		Version:     c.Version,
		Environment: c.Environment,
	}
}

// Load reads config files and environment, then applies defaults and validates.
func Load(opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig(ServiceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
