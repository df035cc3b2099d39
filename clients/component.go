package clients

import (
	"context"
	"fmt"

	"github.com/kbukum/eventstream/component"
	"github.com/kbukum/eventstream/logger"
	"github.com/kbukum/eventstream/redis"
)

// Component builds the registry on Start and runs its startup sequence:
// purge everything left from a previous run, then initialize storage.
type Component struct {
	cfg      Config
	redis    func() *redis.Client
	log      *logger.Logger
	registry Registry
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates the registry component. redisClient is called on
// Start so the redis component can be started first; it may be nil when
// the shared backend is not configured.
func NewComponent(cfg Config, redisClient func() *redis.Client, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, redis: redisClient, log: log.WithComponent("clients")}
}

// Registry returns the registry, or nil before Start.
func (c *Component) Registry() Registry { return c.registry }

func (c *Component) Name() string { return "clients" }

func (c *Component) Start(ctx context.Context) error {
	var client *redis.Client
	if c.redis != nil {
		client = c.redis()
	}
	reg, err := New(c.cfg, client, c.log)
	if err != nil {
		return err
	}
	if err := reg.PurgeAll(ctx); err != nil {
		return fmt.Errorf("purge client registry: %w", err)
	}
	if reg.Shared() {
		if err := reg.Initialize(ctx); err != nil {
			return fmt.Errorf("initialize client registry: %w", err)
		}
	}
	c.registry = reg
	c.log.Info("Client registry ready", logger.Fields("shared", reg.Shared()))
	return nil
}

// Stop leaves records in place; live streams remove their own on teardown.
func (c *Component) Stop(context.Context) error { return nil }

func (c *Component) Health(ctx context.Context) component.Health {
	if c.registry == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	all, err := c.registry.GetAll(ctx)
	if err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: err.Error()}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: fmt.Sprintf("%d connected", len(all))}
}

func (c *Component) Describe() component.Description {
	details := "in-memory"
	if c.cfg.Redis {
		details = "redis key=" + c.cfg.RedisKey
	}
	return component.Description{Name: "Client Registry", Type: "registry", Details: details}
}
