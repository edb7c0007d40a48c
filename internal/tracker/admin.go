package tracker

import (
	"context"

	"thali/internal/amqp"
	"thali/internal/core"
	applog "thali/internal/log"
)

// DeleteRecord removes the record of date, returning core.ErrNotFound when
// there is none. The date is Open again with an empty draft.
func (t *Tracker) DeleteRecord(ctx context.Context, date core.Date) error {
	return t.remove(ctx, date, applog.OpDelete, amqp.EventDeleted)
}

// UnlockRecord reopens date for editing. It removes the record exactly like
// DeleteRecord but is reported under its own name.
func (t *Tracker) UnlockRecord(ctx context.Context, date core.Date) error {
	return t.remove(ctx, date, applog.OpUnlock, amqp.EventUnlocked)
}

func (t *Tracker) remove(ctx context.Context, date core.Date, op string, event amqp.EventType) error {
	if err := t.store.Delete(ctx, date); err != nil {
		return err
	}
	t.dropDraft(date)
	removals.WithLabelValues(op).Inc()

	t.logger.InfoContext(ctx, "Meal record removed",
		applog.FieldOperation, op,
		applog.FieldDate, string(date))
	t.publish(ctx, amqp.NewRemovedEvent(event, date))
	return nil
}

// ClearAll removes every record and returns how many were removed. If it is
// interrupted the partial count is returned with the error and the records
// not yet reached stay in the store.
func (t *Tracker) ClearAll(ctx context.Context) (int, error) {
	removed, err := t.store.Clear(ctx)

	if removed > 0 || err == nil {
		t.mu.Lock()
		clear(t.drafts)
		t.mu.Unlock()
		t.aggregates.Purge()
	}
	removals.WithLabelValues(applog.OpClear).Add(float64(removed))

	if err != nil {
		t.logger.ErrorContext(ctx, "Clear interrupted",
			applog.FieldOperation, applog.OpClear,
			applog.FieldRemoved, removed,
			applog.FieldError, err)
		return removed, err
	}

	t.logger.InfoContext(ctx, "All meal records cleared",
		applog.FieldOperation, applog.OpClear,
		applog.FieldRemoved, removed)
	if removed > 0 {
		t.publish(ctx, amqp.NewClearedEvent())
	}
	return removed, nil
}
