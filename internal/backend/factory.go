package backend

import (
	"context"
	"errors"
	"fmt"

	"thali/internal/amqp"
	"thali/internal/kv"
	kvbadger "thali/internal/kv/badger"
	"thali/internal/kv/memory"
	kvsqlite "thali/internal/kv/sqlite"
	applog "thali/internal/log"
	"thali/internal/store"
	"thali/internal/tracker"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	return &DefaultFactory{
		logger: applog.OrDefault(logger).WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend opens the configured medium and builds the store and
// tracker on top of it.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	medium, err := f.openMedium(ctx, config)
	if err != nil {
		return nil, err
	}

	storeOpts := []store.Option{store.WithLogger(f.logger)}
	if config.KeyPrefix != "" {
		storeOpts = append(storeOpts, store.WithPrefix(config.KeyPrefix))
	}
	st := store.New(medium, storeOpts...)

	trackerOpts := []tracker.Option{tracker.WithLogger(f.logger)}
	if config.CacheSize > 0 && config.CacheTTL > 0 {
		trackerOpts = append(trackerOpts, tracker.WithCache(config.CacheSize, config.CacheTTL))
	}

	// AMQP is optional: the store is authoritative and events only feed the mirror.
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", applog.FieldError, err)
			amqpClient = nil
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			trackerOpts = append(trackerOpts, tracker.WithPublisher(amqpClient))
		}
	}

	f.logger.InfoContext(ctx, "Initialized record store",
		"backend", config.Type.String(),
		"events_enabled", amqpClient != nil)

	return &BackendResult{
		Medium:  medium,
		Store:   st,
		Tracker: tracker.New(st, trackerOpts...),
		Cleanup: func() error {
			var errs []error
			if amqpClient != nil {
				if err := amqpClient.Close(); err != nil {
					errs = append(errs, fmt.Errorf("amqp: %w", err))
				}
			}
			if err := medium.Close(); err != nil {
				errs = append(errs, fmt.Errorf("medium: %w", err))
			}
			return errors.Join(errs...)
		},
	}, nil
}

func (f *DefaultFactory) openMedium(ctx context.Context, config Config) (kv.Medium, error) {
	switch config.Type {
	case SQLiteBackend:
		m, err := kvsqlite.Open(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store: %w", err)
		}
		f.logger.InfoContext(ctx, "Opened SQLite store", "db_path", config.SQLiteDBPath)
		return m, nil

	case BadgerBackend:
		cfg := kvbadger.DefaultConfig(config.BadgerPath)
		cfg.Logger = f.logger.Logger
		m, err := kvbadger.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open Badger store: %w", err)
		}
		f.logger.InfoContext(ctx, "Opened Badger store", "path", config.BadgerPath)
		return m, nil

	case MemoryBackend:
		f.logger.WarnContext(ctx, "Using memory store, records are lost on exit")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
