package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbukum/blockflow/component"
	"github.com/kbukum/blockflow/logger"
	"github.com/kbukum/blockflow/observability"
	"github.com/kbukum/blockflow/server"
	"github.com/kbukum/blockflow/server/api"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the workspace API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

// serve starts storage, telemetry and the HTTP server, blocks until ctx
// is done, then stops them in reverse order.
func (a *app) serve(ctx context.Context) error {
	provider, err := observability.Setup(ctx, a.cfg.Observability, a.cfg.ServiceInfo())
	if err != nil {
		return err
	}
	a.metrics = provider.Metrics
	if err := a.openStore(); err != nil {
		_ = provider.Shutdown(ctx)
		return err
	}

	srv := server.New(a.cfg.Server, logger.Get("server"))
	srv.ApplyMiddleware(provider.Metrics)
	api.New(a.manager).Register(srv.Engine())

	lifecycle := component.NewRegistry(a.log)
	for _, c := range []component.Component{
		component.WithHealth("storage", nil, a.closeStore, a.manager),
		component.New("telemetry", nil, provider.Shutdown),
		component.New("http", srv.Start, srv.Stop),
	} {
		if err := lifecycle.Register(c); err != nil {
			return err
		}
	}
	srv.RegisterDefaultEndpoints(a.cfg.Name, lifecycle.HealthCheckers()...)

	if err := lifecycle.StartAll(ctx); err != nil {
		return err
	}
	a.log.Info("blockflow serving", logger.Fields(
		"addr", srv.Addr(),
		"storage", a.cfg.Storage.Provider,
		logger.FieldWorkspace, a.workspaceID,
	))

	<-ctx.Done()
	a.log.Info("Shutdown signal received")
	return lifecycle.StopAll(context.WithoutCancel(ctx))
}
