package redis

import (
	"fmt"
	"time"

	"github.com/kbukum/eventstream/security"
	"github.com/kbukum/eventstream/validation"
)

// Config holds Redis connection configuration.
type Config struct {
	// Enabled controls whether the Redis component is started at all.
	Enabled bool `mapstructure:"enabled"`

	// Addr is the Redis server address (host:port).
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0,lte=15"`

	PoolSize     int `mapstructure:"pool_size" validate:"gte=0"`
	MinIdleConns int `mapstructure:"min_idle_conns" validate:"gte=0"`
	MaxRetries   int `mapstructure:"max_retries" validate:"gte=0"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// TxRetries bounds how many times Doc.Update re-runs after a WATCH conflict.
	TxRetries int `mapstructure:"tx_retries" validate:"gte=0"`
	// TxBackoff is the first pause after a conflict; later pauses double.
	TxBackoff time.Duration `mapstructure:"tx_backoff" validate:"gte=0"`

	TLS security.TLSConfig `mapstructure:"tls"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
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
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 3 * time.Second
	}
	if c.TxRetries <= 0 {
		c.TxRetries = 16
	}
	if c.TxBackoff <= 0 {
		c.TxBackoff = 2 * time.Millisecond
	}
}

// Validate checks struct tags and the fields tags cannot express. A
// disabled config is always valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := validation.Validate(c); err != nil {
		return err
	}
	if c.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be > 0")
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("redis %w", err)
	}
	return nil
}
