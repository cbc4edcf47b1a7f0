package redis

import (
	"fmt"
	"time"
)

// DefaultAddr is the address used when none is configured.
const DefaultAddr = "localhost:6379"

// Config holds Redis connection configuration.
type Config struct {
	// Addr is the Redis server address (host:port).
	Addr string `mapstructure:"addr" json:"addr"`

	// Password is the Redis server password.
	Password string `mapstructure:"password" json:"-"`

	// DB is the Redis database number.
	DB int `mapstructure:"db" json:"db"`

	// PoolSize is the maximum number of socket connections.
	PoolSize int `mapstructure:"pool_size" json:"pool_size"`

	// MinIdleConns is the minimum number of idle connections.
	MinIdleConns int `mapstructure:"min_idle_conns" json:"min_idle_conns"`

	// MaxRetries is the number of retries go-redis performs per command.
	MaxRetries int `mapstructure:"max_retries" json:"max_retries"`

	// DialTimeout is the timeout for establishing new connections (e.g. "5s").
	DialTimeout string `mapstructure:"dial_timeout" json:"dial_timeout"`

	// ReadTimeout is the timeout for socket reads (e.g. "3s").
	ReadTimeout string `mapstructure:"read_timeout" json:"read_timeout"`

	// WriteTimeout is the timeout for socket writes (e.g. "3s").
	WriteTimeout string `mapstructure:"write_timeout" json:"write_timeout"`

	// TTL expires snapshot keys after this duration (e.g. "720h"). Empty keeps them forever.
	TTL string `mapstructure:"ttl" json:"ttl"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns <= 0 {
		c.MinIdleConns = 2
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "5s"
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "3s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "3s"
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be > 0")
	}
	if c.DB < 0 {
		return fmt.Errorf("db must be >= 0")
	}
	for name, v := range map[string]string{
		"dial_timeout":  c.DialTimeout,
		"read_timeout":  c.ReadTimeout,
		"write_timeout": c.WriteTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}
	if c.TTL != "" {
		if d, err := time.ParseDuration(c.TTL); err != nil || d < 0 {
			return fmt.Errorf("invalid ttl %q", c.TTL)
		}
	}
	return nil
}

// Expiration returns the parsed TTL, zero meaning no expiry.
func (c *Config) Expiration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}
