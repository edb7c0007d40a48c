package worker

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"thali/internal/amqp"
	"thali/internal/core"
	applog "thali/internal/log"
	"thali/internal/sheets"
)

var mirrored = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "thali_worker_events_total",
	Help: "Record events applied to the mirror, by type and outcome.",
}, []string{"type", "outcome"})

// RecordSource lists every stored record. *store.Store satisfies it.
type RecordSource interface {
	Records(ctx context.Context) ([]core.MealRecord, error)
}

// MirrorWorker applies record events to a spreadsheet mirror.
type MirrorWorker struct {
	mirror sheets.RecordMirror
	logger *applog.Logger
}

func NewMirrorWorker(mirror sheets.RecordMirror, logger *applog.Logger) *MirrorWorker {
	return &MirrorWorker{
		mirror: mirror,
		logger: applog.OrDefault(logger).WithComponent(applog.ComponentWorker),
	}
}

// HandleEvent processes a single record event from AMQP. A returned error
// asks the broker to redeliver.
func (w *MirrorWorker) HandleEvent(ctx context.Context, event amqp.RecordEvent) error {
	w.logger.InfoContext(ctx, "Processing record event",
		applog.FieldEventType, string(event.Type),
		applog.FieldDate, event.Date)

	var err error
	switch event.Type {
	case amqp.EventCommitted:
		err = w.mirror.AppendRecord(ctx, event.Record())
	case amqp.EventDeleted, amqp.EventUnlocked:
		err = w.mirror.DeleteRecord(ctx, core.Date(event.Date))
	case amqp.EventCleared:
		err = w.mirror.Clear(ctx)
	default:
		err = fmt.Errorf("unknown event type %q", event.Type)
	}

	if err != nil {
		mirrored.WithLabelValues(string(event.Type), "error").Inc()
		w.logger.ErrorContext(ctx, "Failed to mirror record event",
			applog.FieldEventType, string(event.Type),
			applog.FieldDate, event.Date,
			applog.FieldError, err)
		return fmt.Errorf("mirror %s: %w", event.Type, err)
	}

	mirrored.WithLabelValues(string(event.Type), "ok").Inc()
	return nil
}

// Resync rebuilds the mirror from src. It recovers from events lost while
// the worker was down.
func (w *MirrorWorker) Resync(ctx context.Context, src RecordSource) error {
	records, err := src.Records(ctx)
	if err != nil {
		return fmt.Errorf("list records for resync: %w", err)
	}
	core.SortByDateDesc(records)

	if err := w.mirror.Clear(ctx); err != nil {
		return fmt.Errorf("clear mirror: %w", err)
	}

	synced, failed := 0, 0
	// Oldest first so the sheet reads chronologically.
	for i := len(records) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := records[i]
		if err := w.mirror.AppendRecord(ctx, rec); err != nil {
			w.logger.ErrorContext(ctx, "Failed to mirror record during resync",
				applog.FieldDate, string(rec.Date),
				applog.FieldError, err)
			failed++
			continue
		}
		synced++
	}

	w.logger.InfoContext(ctx, "Resync completed",
		"total", len(records),
		"synced", synced,
		"errors", failed)
	if failed > 0 {
		return fmt.Errorf("resync: %d of %d records failed", failed, len(records))
	}
	return nil
}
