package observability

import (
	"fmt"
	"time"
)

// Config configures tracing and metrics export. Export is off unless Enabled.
type Config struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"` // OTLP HTTP host:port
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricInterval == 0 {
		c.MetricInterval = 15 * time.Second
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("observability.sample_rate must be between 0 and 1 (got: %v)", c.SampleRate)
	}
	if c.MetricInterval < 0 {
		return fmt.Errorf("observability.metric_interval must be non-negative (got: %s)", c.MetricInterval)
	}
	return nil
}

// ServiceInfo identifies the process in exported telemetry.
type ServiceInfo struct {
	Name        string
	Version     string
	Environment string
}

// TracerConfig returns the tracer settings for this config.
func (c *Config) TracerConfig(info ServiceInfo) TracerConfig {
	return TracerConfig{
		ServiceInfo: info,
		Endpoint:    c.Endpoint,
		Insecure:    c.Insecure,
		SampleRate:  c.SampleRate,
	}
}

// MeterConfig returns the meter settings for this config.
func (c *Config) MeterConfig(info ServiceInfo) MeterConfig {
	return MeterConfig{
		ServiceInfo: info,
		Endpoint:    c.Endpoint,
		Insecure:    c.Insecure,
		Interval:    c.MetricInterval,
	}
}
