package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"thali/internal/cache"
	"thali/internal/cli"
	apphttp "thali/internal/http"
	applog "thali/internal/log"
)

const (
	janitorInterval = time.Minute
	shutdownTimeout = 30 * time.Second
)

func newServeCmd(open openFunc) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, open, func(rt *runtime) error {
				if port == "" {
					port = rt.cfg.Port
				}
				ctx, cancel := cli.SignalContext(cmd.Context(), rt.logger)
				defer cancel()
				return serve(ctx, rt, ":"+port)
			})
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (default $PORT)")
	return cmd
}

// serve runs the API server and the cache janitor until ctx is done, then
// shuts the server down gracefully.
func serve(ctx context.Context, rt *runtime, addr string) error {
	logger := rt.logger
	srv := apphttp.NewServer(addr, rt.tracker, logger)

	janitor := cache.NewJanitor(logger.WithComponent(applog.ComponentApp))
	janitor.Register(rt.tracker.AggregateCache())
	janitor.Register(srv.RateLimiter())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting thali server",
			"addr", addr,
			"backend", rt.cfg.StoreBackend,
			"events", rt.cfg.EventsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return janitor.Run(gctx, janitorInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		logger.Info("Shutting down server", applog.FieldOperation, applog.OpShutdown)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
