package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date layout used for keys and wire values.
const DateLayout = "2006-01-02"

const (
	Open   State = "open"
	Locked State = "locked"
)

type (
	// Date is an ISO YYYY-MM-DD calendar date. Lexicographic order equals
	// chronological order, which the range filter relies on.
	Date string

	// State of a date in the daily selection flow.
	State string

	Selections struct {
		Morning bool
		Evening bool
	}

	MealRecord struct {
		Date       Date
		Morning    bool
		Evening    bool
		RecordedAt time.Time // informational only
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrAlreadyExists = errors.New("record already exists")
	ErrNotFound      = errors.New("record not found")
	ErrCorrupt       = errors.New("corrupt record")
	ErrDateLocked    = errors.New("date is locked")
)

// ParseDate trims s and checks it is a real calendar date in ISO form.
func ParseDate(s string) (Date, error) {
	d := Date(strings.TrimSpace(s))
	if err := d.Validate(); err != nil {
		return "", err
	}
	return d, nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

func (d Date) Validate() error {
	if d == "" {
		return fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if len(d) != len(DateLayout) {
		return fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidDate, string(d))
	}
	if _, err := time.Parse(DateLayout, string(d)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, string(d))
	}
	return nil
}

// Time returns midnight UTC of the date. The zero time is returned for
// invalid dates.
func (d Date) Time() time.Time {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Display renders the date the way the history view shows it,
// e.g. "Monday, January 8, 2024".
func (d Date) Display() string {
	t := d.Time()
	if t.IsZero() {
		return string(d)
	}
	return t.Format("Monday, January 2, 2006")
}

func (d Date) String() string {
	return string(d)
}

func (s Selections) Toggle(meal Meal) Selections {
	switch meal {
	case Morning:
		s.Morning = !s.Morning
	case Evening:
		s.Evening = !s.Evening
	}
	return s
}

// NewRecord builds the record committed for date from the given selections.
func NewRecord(date Date, sel Selections, recordedAt time.Time) MealRecord {
	return MealRecord{
		Date:       date,
		Morning:    sel.Morning,
		Evening:    sel.Evening,
		RecordedAt: recordedAt,
	}
}

func (r MealRecord) Selections() Selections {
	return Selections{Morning: r.Morning, Evening: r.Evening}
}

// Meals returns how many meals the record counts towards the total.
func (r MealRecord) Meals() int {
	n := 0
	if r.Morning {
		n++
	}
	if r.Evening {
		n++
	}
	return n
}

func (r MealRecord) Validate() error {
	return r.Date.Validate()
}
