package server

import (
	"net"
	"strconv"
	"time"

	"github.com/kbukum/eventstream/server/middleware"
	"github.com/kbukum/eventstream/validation"
)

// Config holds HTTP server configuration.
//
// WriteTimeout bounds ordinary responses only. Event streams clear their
// own deadlines once they start.
type Config struct {
	Host              string                `mapstructure:"host"`
	Port              int                   `mapstructure:"port" validate:"gte=0,lte=65535"`
	ReadHeaderTimeout time.Duration         `mapstructure:"read_header_timeout" validate:"gte=0"`
	ReadTimeout       time.Duration         `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout      time.Duration         `mapstructure:"write_timeout" validate:"gte=0"`
	IdleTimeout       time.Duration         `mapstructure:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout   time.Duration         `mapstructure:"shutdown_timeout" validate:"gte=0"`
	MaxBodySize       string                `mapstructure:"max_body_size"` // e.g. "1MB"
	CORS              middleware.CORSConfig `mapstructure:"cors"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept"}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
