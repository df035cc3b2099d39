package sse

import (
	"context"
	"fmt"

	"github.com/kbukum/eventstream/clients"
	"github.com/kbukum/eventstream/component"
	"github.com/kbukum/eventstream/logger"
)

// Component builds the process-wide Stream and Factory once the client
// registry is available. Register it after the clients component and
// before the server.
type Component struct {
	cfg      Config
	registry func() clients.Registry
	ids      IDGenerator
	log      *logger.Logger
	opts     []StreamOption

	stream  *Stream
	factory *Factory
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates the sse component. registry is called on Start.
func NewComponent(cfg Config, registry func() clients.Registry, ids IDGenerator, log *logger.Logger, opts ...StreamOption) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, registry: registry, ids: ids, log: log, opts: opts}
}

// Stream returns the stream handler, or nil before Start.
func (c *Component) Stream() *Stream { return c.stream }

// Factory returns the source factory, or nil before Start.
func (c *Component) Factory() *Factory { return c.factory }

func (c *Component) Name() string { return "sse" }

func (c *Component) Start(_ context.Context) error {
	reg := c.registry()
	if reg == nil {
		return fmt.Errorf("sse start: client registry not available")
	}
	c.factory = NewFactory(reg, c.ids)
	c.stream = NewStream(c.cfg, c.log, c.opts...)
	return nil
}

func (c *Component) Stop(_ context.Context) error { return nil }

func (c *Component) Health(_ context.Context) component.Health {
	if c.stream == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Event Stream",
		Type:    "sse",
		Details: fmt.Sprintf("heartbeat=%s padding=%d no_ids=%t", c.cfg.HeartbeatInterval, c.cfg.PaddingSize, c.cfg.NoIDs),
	}
}
