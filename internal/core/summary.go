package core

import (
	"fmt"
	"sort"
)

// Range restricts aggregation to dates between Start and End, both
// inclusive. An empty bound is absent.
type Range struct {
	Start Date
	End   Date
}

// Aggregates are the counts shown on the overview.
// Total counts meals served, so a day with both meals adds 2.
type Aggregates struct {
	Morning int
	Evening int
	Total   int
	Days    int
}

func (r Range) IsZero() bool {
	return r.Start == "" && r.End == ""
}

// Validate checks the bounds that are present.
func (r Range) Validate() error {
	if r.Start != "" {
		if err := r.Start.Validate(); err != nil {
			return fmt.Errorf("start: %w", err)
		}
	}
	if r.End != "" {
		if err := r.End.Validate(); err != nil {
			return fmt.Errorf("end: %w", err)
		}
	}
	return nil
}

func (r Range) Contains(d Date) bool {
	if r.Start != "" && d < r.Start {
		return false
	}
	if r.End != "" && d > r.End {
		return false
	}
	return true
}

// Key identifies the range in caches and logs.
func (r Range) Key() string {
	return string(r.Start) + ".." + string(r.End)
}

// Filter returns the records whose date falls in rng, preserving order.
func Filter(records []MealRecord, rng Range) []MealRecord {
	out := make([]MealRecord, 0, len(records))
	for _, r := range records {
		if rng.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// Summarize counts the records that fall in rng.
func Summarize(records []MealRecord, rng Range) Aggregates {
	var a Aggregates
	for _, r := range records {
		if !rng.Contains(r.Date) {
			continue
		}
		a.Days++
		if r.Morning {
			a.Morning++
		}
		if r.Evening {
			a.Evening++
		}
		a.Total += r.Meals()
	}
	return a
}

// SortByDateDesc orders records most recent first, in place.
func SortByDateDesc(records []MealRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
}
