package main

import (
	"fmt"
	"time"

	"github.com/kbukum/eventstream/config"
	"github.com/kbukum/eventstream/observability"
	"github.com/kbukum/eventstream/redis"
	"github.com/kbukum/eventstream/server"
	"github.com/kbukum/eventstream/sse"
	"github.com/kbukum/eventstream/validation"
	"github.com/kbukum/eventstream/version"
)

// AppConfig is the full service configuration.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	SSE           sse.Config           `yaml:"sse" mapstructure:"sse"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Demo          DemoConfig           `yaml:"demo" mapstructure:"demo"`
}

// DemoConfig controls the built-in /events publisher.
type DemoConfig struct {
	// TickInterval is how often each stream gets a "tick" event. 0 disables it.
	TickInterval time.Duration `yaml:"tick_interval" mapstructure:"tick_interval" validate:"gte=0"`
}

// ApplyDefaults fills every section. The shared client registry turns the
// redis section on.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Version == "" {
		c.Version = version.Get().Version
	}
	if c.SSE.Redis {
		c.Redis.Enabled = true
	}
	c.Server.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.SSE.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := c.SSE.Validate(); err != nil {
		return fmt.Errorf("sse: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	if err := validation.Validate(&c.Demo); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	return nil
}
