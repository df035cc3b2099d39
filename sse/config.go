package sse

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/eventstream/clients"
	"github.com/kbukum/eventstream/validation"
)

const (
	DefaultHeartbeatInterval = 1500 * time.Millisecond
	DefaultPaddingSize       = 2048
	DefaultMaxAge            = 86400
)

// DefaultHeartbeatComment is the body of the keep-alive comment line.
var DefaultHeartbeatComment = strings.Repeat("x", 44)

// CORSConfig controls the Access-Control-* headers on stream responses.
// Origin, when set, is sent as-is. Otherwise the request Origin is echoed
// back only if it appears in Origins.
type CORSConfig struct {
	Origin        string   `mapstructure:"origin"`
	Origins       []string `mapstructure:"origins"`
	Methods       []string `mapstructure:"methods" validate:"dive,required"`
	Credentials   bool     `mapstructure:"credentials"`
	MaxAge        int      `mapstructure:"max_age" validate:"gte=0"`
	ExposeHeaders []string `mapstructure:"expose_headers"`
}

// Config is the sse section of the service configuration.
type Config struct {
	PadForIE           bool          `mapstructure:"pad_for_ie"`
	NoIDs              bool          `mapstructure:"no_ids"`
	PreferredEventName string        `mapstructure:"prefered_event_name"`
	HeartbeatInterval  time.Duration `mapstructure:"heartbeat_interval" validate:"gte=0"`
	HeartbeatComment   string        `mapstructure:"heartbeat_comment"`
	PaddingSize        int           `mapstructure:"padding_size" validate:"gte=0,lte=65536"`
	CORS               CORSConfig    `mapstructure:"cors"`

	clients.Config `mapstructure:",squash"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.HeartbeatComment == "" {
		c.HeartbeatComment = DefaultHeartbeatComment
	}
	if c.PaddingSize == 0 {
		c.PaddingSize = DefaultPaddingSize
	}
	if c.CORS.Origin == "" && len(c.CORS.Origins) == 0 {
		c.CORS.Origin = "*"
	}
	if len(c.CORS.Methods) == 0 {
		c.CORS.Methods = []string{"GET", "POST"}
	}
	if c.CORS.MaxAge == 0 {
		c.CORS.MaxAge = DefaultMaxAge
	}
	c.Config.ApplyDefaults()
}

// Validate checks struct tags and the comment text.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if strings.ContainsAny(c.HeartbeatComment, "\r\n") {
		return fmt.Errorf("sse.heartbeat_comment must be a single line")
	}
	return nil
}

// Options is the resolved, read-only view of a Config used by a Stream.
type Options struct {
	NoIDs              bool
	PadForIE           bool
	PreferredEventName string
	CORS               CORSConfig
	HeartbeatInterval  time.Duration
	HeartbeatComment   string
	PaddingSize        int
}

func resolveOptions(cfg Config) Options {
	cfg.ApplyDefaults()
	cors := cfg.CORS
	cors.Origins = append([]string(nil), cors.Origins...)
	cors.Methods = append([]string(nil), cors.Methods...)
	cors.ExposeHeaders = append([]string(nil), cors.ExposeHeaders...)
	return Options{
		NoIDs:              cfg.NoIDs,
		PadForIE:           cfg.PadForIE,
		PreferredEventName: cfg.PreferredEventName,
		CORS:               cors,
		HeartbeatInterval:  cfg.HeartbeatInterval,
		HeartbeatComment:   cfg.HeartbeatComment,
		PaddingSize:        cfg.PaddingSize,
	}
}
