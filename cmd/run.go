package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/memefi-tapper/internal/adapters/proxy"
	"github.com/bnema/memefi-tapper/internal/adapters/statusapi"
	"github.com/bnema/memefi-tapper/internal/application"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var statusAddr string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a tap session for every stored credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireApp(opts)
			if err != nil {
				return err
			}
			if statusAddr == "" {
				statusAddr = app.settings.StatusAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger, err := app.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			signatures, closeSignatures, err := app.openSignatureStore(ctx, logger)
			if err != nil {
				return err
			}
			defer func() { _ = closeSignatures() }()

			var pool application.ProxyPool
			if app.settings.UseProxyFromFile {
				proxies, err := app.loadProxies(ctx, logger)
				if err != nil {
					return err
				}
				pool = proxy.NewRotator(proxies)
			}

			supervisor := application.NewSupervisor(application.SupervisorDeps{
				Credentials: app.credentials,
				Proxies:     pool,
				Dial:        app.newDialer(signatures, logger),
				Snapshots:   app.snapshots,
				Clock:       app.clock,
				Random:      app.random,
				Logger:      logger,
				Settings:    app.settings.Game,
			})

			if statusAddr == "" {
				return supervisor.Run(ctx)
			}

			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			g, gctx := errgroup.WithContext(runCtx)
			g.Go(func() error {
				defer cancel()
				return supervisor.Run(gctx)
			})
			g.Go(func() error {
				server := statusapi.NewServer(app.snapshots, app.clock, defaultStaleAfter, logger.Named("status"))
				return server.Serve(gctx, statusAddr)
			})

			err = g.Wait()
			if err == nil && ctx.Err() != nil {
				logger.Info("shutting down", zap.Error(ctx.Err()))
			}
			return err
		},
	}

	cmd.Flags().StringVar(&statusAddr, "status-addr", "", "serve session snapshots over HTTP on this address")
	return cmd
}
