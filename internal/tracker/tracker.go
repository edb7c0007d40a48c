// Package tracker drives the daily selection flow on top of the record store:
// a date is Open while it has no stored record and Locked once it has one.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"thali/internal/amqp"
	"thali/internal/cache"
	"thali/internal/core"
	applog "thali/internal/log"
	"thali/internal/store"
)

const (
	DefaultCacheSize      = 64
	DefaultCacheTTL       = 5 * time.Minute
	DefaultPublishTimeout = 2 * time.Second
)

var (
	commits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thali_tracker_commits_total",
		Help: "Commit attempts by outcome (created, adopted, error).",
	}, []string{"outcome"})

	removals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thali_tracker_removals_total",
		Help: "Records removed by administrative operation.",
	}, []string{"operation"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thali_tracker_aggregate_cache_total",
		Help: "Aggregate cache lookups by result.",
	}, []string{"result"})
)

// Publisher receives an event after every successful store mutation.
// *amqp.Client satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event amqp.RecordEvent) error
}

type CommitResult struct {
	Record core.MealRecord
	// Adopted is set when another writer committed the date first and its
	// record was taken instead of the local draft.
	Adopted bool
}

type Tracker struct {
	store     *store.Store
	publisher Publisher
	logger    *applog.Logger
	now       func() time.Time

	mu     sync.Mutex
	drafts map[core.Date]core.Selections

	// aggregates are keyed by range and tagged with the store version they
	// were computed at; an entry from another version is never served.
	aggregates cache.Cache[versionedAggregates]

	cacheSize      int
	cacheTTL       time.Duration
	publishTimeout time.Duration
}

type versionedAggregates struct {
	version uint64
	agg     core.Aggregates
}

type Option func(*Tracker)

func WithPublisher(p Publisher) Option {
	return func(t *Tracker) { t.publisher = p }
}

func WithLogger(l *applog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithClock replaces time.Now; the clock's location decides what "today" is.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithPublishTimeout bounds how long a mutation waits on its event.
func WithPublishTimeout(d time.Duration) Option {
	return func(t *Tracker) { t.publishTimeout = d }
}

func WithCache(size int, ttl time.Duration) Option {
	return func(t *Tracker) {
		t.cacheSize = size
		t.cacheTTL = ttl
	}
}

func New(st *store.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:          st,
		now:            time.Now,
		drafts:         make(map[core.Date]core.Selections),
		cacheSize:      DefaultCacheSize,
		cacheTTL:       DefaultCacheTTL,
		publishTimeout: DefaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = applog.OrDefault(t.logger).WithComponent(applog.ComponentTracker)
	t.aggregates = cache.NewLRUCache[versionedAggregates](t.cacheSize, t.cacheTTL)
	return t
}

// AggregateCache exposes the aggregate cache so a janitor can expire it.
func (t *Tracker) AggregateCache() cache.Cleaner {
	return t.aggregates
}

// Today is the current calendar date in the clock's location.
func (t *Tracker) Today() core.Date {
	return core.DateOf(t.now())
}

// StateOf derives the state of date from the store and returns the stored
// record when Locked.
func (t *Tracker) StateOf(ctx context.Context, date core.Date) (core.State, core.MealRecord, error) {
	rec, found, err := t.store.Get(ctx, date)
	if err != nil {
		return "", core.MealRecord{}, err
	}
	if found {
		return core.Locked, rec, nil
	}
	return core.Open, core.MealRecord{}, nil
}

func (t *Tracker) IsLocked(ctx context.Context, date core.Date) (bool, error) {
	state, _, err := t.StateOf(ctx, date)
	return state == core.Locked, err
}

// Selections returns the stored values for a Locked date and the draft for
// an Open one.
func (t *Tracker) Selections(ctx context.Context, date core.Date) (core.Selections, error) {
	state, rec, err := t.StateOf(ctx, date)
	if err != nil {
		return core.Selections{}, err
	}
	if state == core.Locked {
		return rec.Selections(), nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.drafts[date], nil
}

func (t *Tracker) ToggleMorning(ctx context.Context, date core.Date) (core.Selections, error) {
	return t.Toggle(ctx, date, core.Morning)
}

func (t *Tracker) ToggleEvening(ctx context.Context, date core.Date) (core.Selections, error) {
	return t.Toggle(ctx, date, core.Evening)
}

// Toggle flips one meal in the draft of an Open date. A Locked date is left
// untouched and core.ErrDateLocked is returned.
func (t *Tracker) Toggle(ctx context.Context, date core.Date, meal core.Meal) (core.Selections, error) {
	locked, err := t.IsLocked(ctx, date)
	if err != nil {
		return core.Selections{}, err
	}
	if locked {
		return core.Selections{}, fmt.Errorf("toggle %s on %s: %w", meal, date, core.ErrDateLocked)
	}

	t.mu.Lock()
	sel := t.drafts[date].Toggle(meal)
	t.drafts[date] = sel
	t.mu.Unlock()

	t.logger.DebugContext(ctx, "Draft toggled",
		applog.NewFields().
			WithOperation(applog.OpToggle).
			WithRecord(string(date), sel.Morning, sel.Evening).
			ToSlice()...)
	return sel, nil
}

// Commit persists the draft of date. If the date already has a record, from
// an earlier commit or another writer, that record is adopted and the draft
// dropped; this is not an error.
func (t *Tracker) Commit(ctx context.Context, date core.Date) (CommitResult, error) {
	if err := date.Validate(); err != nil {
		return CommitResult{}, err
	}

	t.mu.Lock()
	sel := t.drafts[date]
	t.mu.Unlock()

	rec := core.NewRecord(date, sel, t.now().UTC().Round(0))
	err := t.store.Put(ctx, rec)
	switch {
	case err == nil:
		t.dropDraft(date)
		commits.WithLabelValues("created").Inc()
		t.logger.InfoContext(ctx, "Selections committed",
			applog.NewFields().
				WithOperation(applog.OpCommit).
				WithRecord(string(date), rec.Morning, rec.Evening).
				ToSlice()...)
		t.publish(ctx, amqp.NewCommittedEvent(rec))
		return CommitResult{Record: rec}, nil

	case errors.Is(err, core.ErrAlreadyExists):
		stored, found, gerr := t.store.Get(ctx, date)
		if gerr != nil {
			commits.WithLabelValues("error").Inc()
			return CommitResult{}, fmt.Errorf("adopt record %s: %w", date, gerr)
		}
		if !found {
			commits.WithLabelValues("error").Inc()
			return CommitResult{}, fmt.Errorf("adopt record %s: removed concurrently: %w", date, core.ErrNotFound)
		}
		t.dropDraft(date)
		commits.WithLabelValues("adopted").Inc()
		t.logger.InfoContext(ctx, "Existing record adopted",
			applog.NewFields().
				WithOperation(applog.OpAdopt).
				WithRecord(string(date), stored.Morning, stored.Evening).
				ToSlice()...)
		return CommitResult{Record: stored, Adopted: true}, nil

	default:
		commits.WithLabelValues("error").Inc()
		return CommitResult{}, fmt.Errorf("commit %s: %w", date, err)
	}
}

// Records returns the stored records inside rng, newest first.
func (t *Tracker) Records(ctx context.Context, rng core.Range) ([]core.MealRecord, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	all, err := t.store.Records(ctx)
	if err != nil {
		return nil, err
	}
	out := core.Filter(all, rng)
	core.SortByDateDesc(out)
	return out, nil
}

// Aggregates counts the meals recorded inside rng. A cached result is
// served only while the store version it was computed at is still current,
// so writes by any process sharing the store are reflected immediately.
func (t *Tracker) Aggregates(ctx context.Context, rng core.Range) (core.Aggregates, error) {
	if err := rng.Validate(); err != nil {
		return core.Aggregates{}, err
	}
	// Read before the records: a write racing the computation leaves the
	// entry tagged with an older version, never a newer one.
	version, err := t.store.Version(ctx)
	if err != nil {
		return core.Aggregates{}, err
	}

	key := rng.Key()
	if cached, ok := t.aggregates.Get(key); ok {
		if cached.version == version {
			cacheLookups.WithLabelValues("hit").Inc()
			return cached.agg, nil
		}
		t.aggregates.Delete(key)
		cacheLookups.WithLabelValues("stale").Inc()
	} else {
		cacheLookups.WithLabelValues("miss").Inc()
	}

	all, err := t.store.Records(ctx)
	if err != nil {
		return core.Aggregates{}, err
	}
	agg := core.Summarize(all, rng)
	t.aggregates.Set(key, versionedAggregates{version: version, agg: agg})

	t.logger.DebugContext(ctx, "Aggregates computed",
		applog.FieldOperation, applog.OpAggregate,
		applog.FieldRange, key,
		"total", agg.Total)
	return agg, nil
}

func (t *Tracker) dropDraft(date core.Date) {
	t.mu.Lock()
	delete(t.drafts, date)
	t.mu.Unlock()
}

// publish is best effort: the store is the source of truth and a lost event
// only delays the mirror. It waits at most publishTimeout.
func (t *Tracker) publish(ctx context.Context, event amqp.RecordEvent) {
	if t.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, t.publishTimeout)
	defer cancel()
	if err := t.publisher.Publish(ctx, event); err != nil {
		t.logger.ErrorContext(ctx, "Failed to publish record event",
			applog.NewFields().
				WithEvent(string(event.Type), event.Date).
				WithError(err).
				ToSlice()...)
	}
}
