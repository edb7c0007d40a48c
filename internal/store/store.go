// Package store persists one MealRecord per calendar date on a kv.Medium.
//
// Keys are a fixed namespace prefix followed by the ISO date; values are the
// JSON encoded record. The store enforces the write-once rule: Put never
// overwrites an existing date.
//
// A value that cannot be decoded is corrupt. Listing skips corrupt entries
// after logging them, so aggregates built from All understate totals rather
// than fail.
package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"thali/internal/core"
	"thali/internal/kv"
	applog "thali/internal/log"
)

// DefaultPrefix is the namespace the browser app used for its entries.
const DefaultPrefix = "mealPreferences_"

var (
	storeOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thali_store_operations_total",
		Help: "Record store operations by operation and result",
	}, []string{"operation", "result"})

	corruptEntries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thali_store_corrupt_entries_total",
		Help: "Stored entries skipped because they could not be decoded",
	})
)

type Store struct {
	medium kv.Medium
	prefix string
	logger *applog.Logger
}

type Option func(*Store)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func WithLogger(l *applog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(medium kv.Medium, opts ...Option) *Store {
	s := &Store{
		medium: medium,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = applog.OrDefault(s.logger).WithComponent(applog.ComponentStore)
	return s
}

// Key returns the medium key holding date's record.
func (s *Store) Key(date core.Date) string {
	return s.prefix + string(date)
}

// Get returns the record stored for date. found is false when there is none.
// A stored value that fails to decode is returned as core.ErrCorrupt.
func (s *Store) Get(ctx context.Context, date core.Date) (rec core.MealRecord, found bool, err error) {
	if err := date.Validate(); err != nil {
		return core.MealRecord{}, false, err
	}
	data, err := s.medium.Get(ctx, s.Key(date))
	if errors.Is(err, kv.ErrNotFound) {
		storeOps.WithLabelValues("get", "absent").Inc()
		return core.MealRecord{}, false, nil
	}
	if err != nil {
		storeOps.WithLabelValues("get", "error").Inc()
		return core.MealRecord{}, false, fmt.Errorf("get record %s: %w", date, err)
	}
	rec, err = decode(date, data)
	if err != nil {
		s.reportCorrupt(ctx, s.Key(date), err)
		return core.MealRecord{}, false, err
	}
	storeOps.WithLabelValues("get", "found").Inc()
	return rec, true, nil
}

// Put stores rec under its date. It fails with core.ErrAlreadyExists if the
// date already has a record; the existing value is left untouched.
// RecordedAt is stored in UTC: Get returns the same instant, not the
// caller's location.
func (s *Store) Put(ctx context.Context, rec core.MealRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	data, err := encode(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.Date, err)
	}
	stored, err := s.medium.SetIfAbsent(ctx, s.Key(rec.Date), data)
	if err != nil {
		storeOps.WithLabelValues("put", "error").Inc()
		return fmt.Errorf("put record %s: %w", rec.Date, err)
	}
	if !stored {
		storeOps.WithLabelValues("put", "exists").Inc()
		return fmt.Errorf("put record %s: %w", rec.Date, core.ErrAlreadyExists)
	}
	storeOps.WithLabelValues("put", "stored").Inc()
	s.logger.InfoContext(ctx, "Meal record stored",
		applog.NewFields().WithRecord(string(rec.Date), rec.Morning, rec.Evening).ToSlice()...)
	return nil
}

// Delete removes date's record, or returns core.ErrNotFound. Corrupt
// entries are removed like any other.
func (s *Store) Delete(ctx context.Context, date core.Date) error {
	if err := date.Validate(); err != nil {
		return err
	}
	removed, err := s.medium.Delete(ctx, s.Key(date))
	if err != nil {
		storeOps.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("delete record %s: %w", date, err)
	}
	if !removed {
		storeOps.WithLabelValues("delete", "absent").Inc()
		return fmt.Errorf("delete record %s: %w", date, core.ErrNotFound)
	}
	storeOps.WithLabelValues("delete", "removed").Inc()
	s.logger.InfoContext(ctx, "Meal record deleted", applog.FieldDate, string(date))
	return nil
}

// All enumerates every decodable record, in no particular order. Each range
// over the sequence reads the medium afresh. Corrupt entries are skipped; a
// medium failure is yielded once as an error and ends the sequence.
func (s *Store) All(ctx context.Context) iter.Seq2[core.MealRecord, error] {
	return func(yield func(core.MealRecord, error) bool) {
		keys, err := s.medium.Keys(ctx, s.prefix)
		if err != nil {
			yield(core.MealRecord{}, fmt.Errorf("list records: %w", err))
			return
		}
		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				yield(core.MealRecord{}, err)
				return
			}
			data, err := s.medium.Get(ctx, key)
			if errors.Is(err, kv.ErrNotFound) {
				continue // removed after the key listing
			}
			if err != nil {
				yield(core.MealRecord{}, fmt.Errorf("read %s: %w", key, err))
				return
			}
			rec, err := decode(core.Date(strings.TrimPrefix(key, s.prefix)), data)
			if err != nil {
				s.reportCorrupt(ctx, key, err)
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Version identifies the medium's current contents. It changes after any
// write or delete, including those made by other processes sharing the
// medium.
func (s *Store) Version(ctx context.Context) (uint64, error) {
	v, err := s.medium.Version(ctx)
	if err != nil {
		return 0, fmt.Errorf("read store version: %w", err)
	}
	return v, nil
}

// Records collects All into a slice.
func (s *Store) Records(ctx context.Context) ([]core.MealRecord, error) {
	var out []core.MealRecord
	for rec, err := range s.All(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Clear deletes every entry in the namespace, corrupt ones included, one key
// at a time. It returns how many entries it removed before finishing or
// failing; entries not reached are still listed afterwards.
func (s *Store) Clear(ctx context.Context) (int, error) {
	keys, err := s.medium.Keys(ctx, s.prefix)
	if err != nil {
		return 0, fmt.Errorf("list records: %w", err)
	}
	removed := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		ok, err := s.medium.Delete(ctx, key)
		if err != nil {
			storeOps.WithLabelValues("clear", "error").Inc()
			return removed, fmt.Errorf("delete %s: %w", key, err)
		}
		if ok {
			removed++
		}
	}
	storeOps.WithLabelValues("clear", "done").Inc()
	s.logger.InfoContext(ctx, "Meal records cleared", applog.FieldRemoved, removed)
	return removed, nil
}

func (s *Store) reportCorrupt(ctx context.Context, key string, err error) {
	corruptEntries.Inc()
	s.logger.WarnContext(ctx, "Skipping corrupt meal record",
		applog.FieldKey, key,
		applog.FieldError, err)
}
