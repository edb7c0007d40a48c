package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"thali/internal/core"
)

// EventType names a change to the record store.
type EventType string

const (
	EventCommitted EventType = "record.committed"
	EventDeleted   EventType = "record.deleted"
	EventUnlocked  EventType = "record.unlocked"
	EventCleared   EventType = "records.cleared"
)

// RecordEvent describes one store mutation. Committed events carry the full
// record so consumers never need to read the store; the others only carry
// the date (none for clears).
type RecordEvent struct {
	Type       EventType `json:"type"`
	Date       string    `json:"date,omitempty"`
	Morning    bool      `json:"morning,omitempty"`
	Evening    bool      `json:"evening,omitempty"`
	RecordedAt time.Time `json:"recorded_at,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewCommittedEvent(rec core.MealRecord) RecordEvent {
	return RecordEvent{
		Type:       EventCommitted,
		Date:       string(rec.Date),
		Morning:    rec.Morning,
		Evening:    rec.Evening,
		RecordedAt: rec.RecordedAt,
		Timestamp:  time.Now().UTC(),
	}
}

// NewRemovedEvent builds a deleted or unlocked event for date.
func NewRemovedEvent(t EventType, date core.Date) RecordEvent {
	return RecordEvent{Type: t, Date: string(date), Timestamp: time.Now().UTC()}
}

func NewClearedEvent() RecordEvent {
	return RecordEvent{Type: EventCleared, Timestamp: time.Now().UTC()}
}

// Record returns the record carried by a committed event.
func (e RecordEvent) Record() core.MealRecord {
	return core.MealRecord{
		Date:       core.Date(e.Date),
		Morning:    e.Morning,
		Evening:    e.Evening,
		RecordedAt: e.RecordedAt,
	}
}

func (e RecordEvent) Validate() error {
	switch e.Type {
	case EventCommitted, EventDeleted, EventUnlocked:
		if err := core.Date(e.Date).Validate(); err != nil {
			return fmt.Errorf("%s event: %w", e.Type, err)
		}
	case EventCleared:
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	return nil
}

func (e RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON decodes and validates an event body.
func RecordEventFromJSON(data []byte) (RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return RecordEvent{}, err
	}
	if err := e.Validate(); err != nil {
		return RecordEvent{}, err
	}
	return e, nil
}
