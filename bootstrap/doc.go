// Package bootstrap orchestrates the lifecycle of an eventstream service.
//
// An App owns the typed config, the component registry and the logger. Run
// starts components in registration order, runs configure callbacks and
// hooks, prints a startup summary and blocks until SIGINT/SIGTERM or context
// cancellation, then stops everything in reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	_ = app.RegisterComponent(redisComp)
//	_ = app.RegisterComponent(serverComp)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*AppConfig]) error {
//	    return nil
//	})
//	return app.Run(ctx)
package bootstrap
