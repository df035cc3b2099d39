package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/eventstream/bootstrap"
	"github.com/kbukum/eventstream/clients"
	"github.com/kbukum/eventstream/logger"
	"github.com/kbukum/eventstream/observability"
	"github.com/kbukum/eventstream/redis"
	"github.com/kbukum/eventstream/server"
	"github.com/kbukum/eventstream/sse"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the event stream server",
	Long: `Run the HTTP server.

Routes:
  GET|POST /events                  open an event stream
  GET      /api/clients             list the client registry
  POST     /api/clients/:id/events  send to one stream on this process
  DELETE   /api/clients/:id         end one stream on this process
  POST     /api/events              send to every stream on this process
  GET      /health /ready /live /info`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		app, err := newServeApp(cfg)
		if err != nil {
			return err
		}
		return app.Run(cmd.Context())
	},
}

// newServeApp registers components in dependency order: observability,
// redis (only for the shared registry), clients, sse, server.
func newServeApp(cfg *AppConfig, opts ...bootstrap.Option) (*bootstrap.App[*AppConfig], error) {
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}
	log := app.Logger

	obs := observability.NewComponent(cfg.Observability, cfg.Name, cfg.Version, cfg.Environment, log)
	if err := app.RegisterComponent(obs); err != nil {
		return nil, err
	}

	var redisClient func() *redis.Client
	if cfg.Redis.Enabled {
		rc := redis.NewComponent(cfg.Redis, log)
		if err := app.RegisterComponent(rc); err != nil {
			return nil, err
		}
		redisClient = rc.Client
	}

	registry := clients.NewComponent(cfg.SSE.Config, redisClient, log)
	if err := app.RegisterComponent(registry); err != nil {
		return nil, err
	}

	streamMetrics, err := sse.NewMetrics(observability.Meter("github.com/kbukum/eventstream/sse"))
	if err != nil {
		return nil, fmt.Errorf("sse metrics: %w", err)
	}
	events := sse.NewComponent(cfg.SSE, registry.Registry, sse.UUIDGenerator, log, sse.WithMetrics(streamMetrics))
	if err := app.RegisterComponent(events); err != nil {
		return nil, err
	}

	httpMetrics, err := observability.NewMetrics(observability.Meter("github.com/kbukum/eventstream/server"))
	if err != nil {
		return nil, fmt.Errorf("http metrics: %w", err)
	}
	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware(httpMetrics)
	srv.RegisterDefaultEndpoints(cfg.Name, app.Components.HealthAll)
	rt := &routes{
		events:   events,
		registry: registry.Registry,
		hub:      newHub(),
		tick:     cfg.Demo.TickInterval,
		log:      log.WithComponent("api"),
	}
	rt.register(srv.GinEngine(), &cfg.Server.CORS)
	srv.TrackRoutes(app.Summary)

	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return nil, err
	}
	app.OnStop(func(context.Context) error {
		log.Info("Closing local streams", logger.Fields("count", rt.hub.len()))
		return nil
	})
	return app, nil
}
