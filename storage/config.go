package storage

import (
	"fmt"

	"github.com/kbukum/blockflow/redis"
	"github.com/kbukum/blockflow/resilience"
)

// Provider constants for supported storage backends.
const (
	ProviderMemory = "memory"
	ProviderLocal  = "local"
	ProviderRedis  = "redis"
)

// Default configuration values.
const (
	DefaultProvider  = ProviderLocal
	DefaultNamespace = "blockflow"
	DefaultBasePath  = "./data"
)

// Config holds snapshot storage configuration.
type Config struct {
	// Provider selects the backend: "memory", "local" or "redis".
	Provider string `mapstructure:"provider" json:"provider"`

	// Namespace prefixes every key.
	Namespace string `mapstructure:"namespace" json:"namespace"`

	// BasePath is the root directory for the local provider.
	BasePath string `mapstructure:"base_path" json:"base_path"`

	// Redis configures the redis provider.
	Redis redis.Config `mapstructure:"redis" json:"redis"`

	// Retry is the policy for snapshot reads and writes.
	Retry resilience.RetryConfig `mapstructure:"retry" json:"retry"`

	// Breaker guards the backend against repeated failures.
	Breaker resilience.CircuitBreakerConfig `mapstructure:"breaker" json:"breaker"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.Provider == ProviderRedis {
		c.Redis.ApplyDefaults()
	}
	c.Retry.ApplyDefaults()
	c.Breaker.ApplyDefaults()
}

// Validate checks that the configuration is valid for the selected provider.
func (c *Config) Validate() error {
	if _, err := SplitKey(c.Namespace); err != nil {
		return fmt.Errorf("storage: invalid namespace %q", c.Namespace)
	}
	switch c.Provider {
	case ProviderMemory:
	case ProviderLocal:
		if c.BasePath == "" {
			return fmt.Errorf("storage: base_path is required for local provider")
		}
	case ProviderRedis:
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("storage: invalid redis config: %w", err)
		}
	default:
		return fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
	if err := c.Retry.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Breaker.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}
