package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/eventstream/bootstrap"
	"github.com/kbukum/eventstream/clients"
	"github.com/kbukum/eventstream/redis"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Inspect or reset the shared client registry",
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the connected clients as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRegistryTask(cmd, func(ctx context.Context, reg clients.Registry) error {
			return listClients(ctx, reg, cmd.OutOrStdout())
		})
	},
}

var clientsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every record and re-create an empty registry",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRegistryTask(cmd, func(ctx context.Context, reg clients.Registry) error {
			if err := reg.PurgeAll(ctx); err != nil {
				return err
			}
			if err := reg.Initialize(ctx); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "client registry purged")
			return err
		})
	},
}

func init() {
	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsPurgeCmd)
}

// runRegistryTask connects to Redis and runs task against the shared
// registry. The in-memory registry lives inside a server process, so
// these commands require sse.redis.
func runRegistryTask(cmd *cobra.Command, task func(ctx context.Context, reg clients.Registry) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := bootstrap.NewApp(cfg, bootstrap.WithSummaryOutput(io.Discard))
	if err != nil {
		return err
	}
	if !cfg.SSE.Redis {
		return fmt.Errorf("clients: sse.redis is false; the in-memory registry is only reachable through GET /api/clients")
	}

	rc := redis.NewComponent(cfg.Redis, app.Logger)
	if err := app.RegisterComponent(rc); err != nil {
		return err
	}
	return app.RunTask(cmd.Context(), func(ctx context.Context) error {
		reg, err := clients.New(cfg.SSE.Config, rc.Client(), app.Logger)
		if err != nil {
			return err
		}
		return task(ctx, reg)
	})
}

func listClients(ctx context.Context, reg clients.Registry, w io.Writer) error {
	all, err := reg.GetAll(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"shared": reg.Shared(), "count": len(all), "clients": all})
}
