package main

import (
	"context"
	"fmt"
	"os"

	"thali/internal/backend"
	"thali/internal/cli"
	"thali/internal/config"
	applog "thali/internal/log"
	"thali/internal/tracker"
)

// runtime is everything a command needs once configuration is loaded.
type runtime struct {
	cfg     *config.Config
	logger  *applog.Logger
	tracker *tracker.Tracker
	cleanup backend.CleanupFunc
}

func (rt *runtime) Close() {
	if rt.cleanup == nil {
		return
	}
	if err := rt.cleanup(); err != nil {
		rt.logger.Error("Cleanup failed", applog.FieldError, err)
	}
}

// openFunc builds a runtime. Tests swap it for one over a memory medium.
type openFunc func(ctx context.Context) (*runtime, error)

// openRuntime loads .env and the environment, then opens the configured
// backend. Logs go to stderr so command output stays clean.
func openRuntime(ctx context.Context) (*runtime, error) {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	logger := cli.SetupLogger(cfg.LogLevel, os.Stderr)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		tracker: res.Tracker,
		cleanup: res.Cleanup,
	}, nil
}
