// Command thali-worker mirrors record events into a Google Sheets spreadsheet.
package main

import (
	"context"
	"errors"
	"os"

	"thali/internal/amqp"
	"thali/internal/backend"
	"thali/internal/cli"
	"thali/internal/config"
	applog "thali/internal/log"
	gsheet "thali/internal/sheets/google"
	"thali/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, os.Stdout)

	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	logger.Info("Starting thali-worker", applog.FieldOperation, applog.OpStartup)

	sheetsClient, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		return err
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	mirrorWorker := worker.NewMirrorWorker(sheetsClient, logger)

	if cfg.WorkerResyncOnStart {
		// Don't exit on failure: live events keep the mirror moving.
		if err := resync(ctx, cfg, logger, mirrorWorker); err != nil {
			logger.Error("Startup resync failed", applog.FieldError, err)
		}
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return err
	}
	defer amqpClient.Close()

	logger.Info("Consuming record events", "queue", cfg.AMQPQueue)
	if err := amqpClient.Consume(ctx, mirrorWorker.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// resync rebuilds the mirror from the configured store. The store is opened
// without a publisher and closed again before consuming starts.
func resync(ctx context.Context, cfg *config.Config, logger *applog.Logger, w *worker.MirrorWorker) error {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	bcfg.AMQPURL = ""

	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close store after resync", applog.FieldError, err)
		}
	}()

	logger.Info("Performing startup resync...", "backend", cfg.StoreBackend)
	return w.Resync(ctx, res.Store)
}
