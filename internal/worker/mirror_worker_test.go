package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thali/internal/amqp"
	"thali/internal/core"
	applog "thali/internal/log"
	"thali/internal/sheets/memory"
)

var recordedAt = time.Date(2024, 1, 10, 19, 30, 0, 0, time.UTC)

func record(date core.Date, morning, evening bool) core.MealRecord {
	return core.MealRecord{Date: date, Morning: morning, Evening: evening, RecordedAt: recordedAt}
}

func TestHandleEvent(t *testing.T) {
	ctx := context.Background()
	mirror := memory.New()
	w := NewMirrorWorker(mirror, applog.Discard())

	require.NoError(t, w.HandleEvent(ctx, amqp.NewCommittedEvent(record("2024-01-08", true, false))))
	require.NoError(t, w.HandleEvent(ctx, amqp.NewCommittedEvent(record("2024-01-09", false, true))))
	// Redelivery is harmless.
	require.NoError(t, w.HandleEvent(ctx, amqp.NewCommittedEvent(record("2024-01-09", false, true))))
	assert.Len(t, mirror.Records(), 2)
	assert.Equal(t, 2, mirror.Appends())

	require.NoError(t, w.HandleEvent(ctx, amqp.NewRemovedEvent(amqp.EventDeleted, "2024-01-08")))
	require.NoError(t, w.HandleEvent(ctx, amqp.NewRemovedEvent(amqp.EventUnlocked, "2024-01-07")))
	recs := mirror.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, core.Date("2024-01-09"), recs[0].Date)
	assert.True(t, recs[0].Evening)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewClearedEvent()))
	assert.Empty(t, mirror.Records())
}

func TestHandleEvent_UnknownType(t *testing.T) {
	w := NewMirrorWorker(memory.New(), applog.Discard())
	err := w.HandleEvent(context.Background(), amqp.RecordEvent{Type: "record.renamed", Date: "2024-01-08"})
	assert.Error(t, err)
}

type failingMirror struct {
	*memory.Mirror
	err error
}

func (f failingMirror) AppendRecord(context.Context, core.MealRecord) error { return f.err }

func TestHandleEvent_MirrorErrorIsReturned(t *testing.T) {
	boom := errors.New("quota exceeded")
	w := NewMirrorWorker(failingMirror{Mirror: memory.New(), err: boom}, applog.Discard())

	err := w.HandleEvent(context.Background(), amqp.NewCommittedEvent(record("2024-01-08", true, true)))
	assert.ErrorIs(t, err, boom)
}

type staticSource struct {
	records []core.MealRecord
	err     error
}

func (s staticSource) Records(context.Context) ([]core.MealRecord, error) {
	return s.records, s.err
}

func TestResync(t *testing.T) {
	ctx := context.Background()
	mirror := memory.New()
	require.NoError(t, mirror.AppendRecord(ctx, record("2023-12-31", true, true)))

	w := NewMirrorWorker(mirror, applog.Discard())
	src := staticSource{records: []core.MealRecord{
		record("2024-01-09", false, true),
		record("2024-01-08", true, false),
	}}
	require.NoError(t, w.Resync(ctx, src))

	recs := mirror.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, core.Date("2024-01-08"), recs[0].Date)
	assert.Equal(t, core.Date("2024-01-09"), recs[1].Date)
}

func TestResync_SourceError(t *testing.T) {
	ctx := context.Background()
	mirror := memory.New()
	require.NoError(t, mirror.AppendRecord(ctx, record("2023-12-31", true, true)))

	w := NewMirrorWorker(mirror, applog.Discard())
	err := w.Resync(ctx, staticSource{err: errors.New("disk gone")})
	require.Error(t, err)
	// The mirror is left alone when the source cannot be read.
	assert.Len(t, mirror.Records(), 1)
}
