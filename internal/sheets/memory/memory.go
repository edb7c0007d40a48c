package memory

import (
	"context"
	"sort"
	"sync"

	"thali/internal/core"
	"thali/internal/sheets"
)

// Mirror keeps mirrored rows in memory.
type Mirror struct {
	mu      sync.Mutex
	rows    map[core.Date]core.MealRecord
	appends int
}

var _ sheets.RecordMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{rows: make(map[core.Date]core.MealRecord)}
}

func (m *Mirror) AppendRecord(_ context.Context, rec core.MealRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[rec.Date]; ok {
		return nil
	}
	m.rows[rec.Date] = rec
	m.appends++
	return nil
}

func (m *Mirror) DeleteRecord(_ context.Context, date core.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, date)
	return nil
}

func (m *Mirror) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.rows)
	return nil
}

// Records returns the mirrored rows, oldest date first.
func (m *Mirror) Records() []core.MealRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.MealRecord, 0, len(m.rows))
	for _, rec := range m.rows {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Appends counts rows actually written, ignoring duplicates.
func (m *Mirror) Appends() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appends
}
