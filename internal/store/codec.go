package store

import (
	"encoding/json"
	"fmt"
	"time"

	"thali/internal/core"
)

// schemaVersion is written with every new entry. Entries without a version
// predate it and carry the same fields.
const schemaVersion = 1

// entry is the persisted shape. Field names match what the browser app
// kept under the same keys, so old dumps load unchanged.
type entry struct {
	Version   int       `json:"version,omitempty"`
	Date      string    `json:"date"`
	Morning   *bool     `json:"morning"`
	Evening   *bool     `json:"evening"`
	Timestamp time.Time `json:"timestamp"`
}

// encode normalises the timestamp to UTC so entries written from any zone
// compare equal once decoded.
func encode(r core.MealRecord) ([]byte, error) {
	morning, evening := r.Morning, r.Evening
	return json.Marshal(entry{
		Version:   schemaVersion,
		Date:      string(r.Date),
		Morning:   &morning,
		Evening:   &evening,
		Timestamp: r.RecordedAt.UTC(),
	})
}

// decode parses the value stored at the key for date. Any mismatch with the
// expected shape is reported as core.ErrCorrupt.
func decode(date core.Date, data []byte) (core.MealRecord, error) {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return core.MealRecord{}, fmt.Errorf("%w: %s: %v", core.ErrCorrupt, date, err)
	}
	if e.Version > schemaVersion {
		return core.MealRecord{}, fmt.Errorf("%w: %s: unsupported version %d", core.ErrCorrupt, date, e.Version)
	}
	if e.Morning == nil || e.Evening == nil {
		return core.MealRecord{}, fmt.Errorf("%w: %s: missing meal selections", core.ErrCorrupt, date)
	}
	d := core.Date(e.Date)
	if err := d.Validate(); err != nil {
		return core.MealRecord{}, fmt.Errorf("%w: %s: %v", core.ErrCorrupt, date, err)
	}
	if d != date {
		return core.MealRecord{}, fmt.Errorf("%w: %s: value holds date %s", core.ErrCorrupt, date, d)
	}
	return core.MealRecord{
		Date:       d,
		Morning:    *e.Morning,
		Evening:    *e.Evening,
		RecordedAt: e.Timestamp,
	}, nil
}
