package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []MealRecord {
	return []MealRecord{
		{Date: "2024-01-08", Morning: true},
		{Date: "2024-01-10", Evening: true},
		{Date: "2024-01-09", Morning: true, Evening: true},
		{Date: "2024-01-07"},
	}
}

func TestSummarize_NoRange(t *testing.T) {
	a := Summarize(sampleRecords(), Range{})
	assert.Equal(t, Aggregates{Morning: 2, Evening: 2, Total: 4, Days: 4}, a)
}

func TestSummarize_SingleDayRange(t *testing.T) {
	records := []MealRecord{
		{Date: "2024-01-08", Morning: true},
		{Date: "2024-01-09", Morning: true, Evening: true},
	}
	a := Summarize(records, Range{Start: "2024-01-09", End: "2024-01-09"})
	assert.Equal(t, 1, a.Morning)
	assert.Equal(t, 1, a.Evening)
	assert.Equal(t, 2, a.Total)
	assert.Equal(t, 1, a.Days)
}

func TestSummarize_TotalIsSumOfMeals(t *testing.T) {
	ranges := []Range{
		{},
		{Start: "2024-01-08"},
		{End: "2024-01-08"},
		{Start: "2024-01-08", End: "2024-01-09"},
		{Start: "2024-02-01", End: "2024-01-01"},
	}
	for _, rng := range ranges {
		a := Summarize(sampleRecords(), rng)
		assert.Equal(t, a.Morning+a.Evening, a.Total, "range %s", rng.Key())
	}
}

func TestRangeContains_BoundsInclusive(t *testing.T) {
	tests := []struct {
		name string
		rng  Range
		date Date
		want bool
	}{
		{"absent bounds", Range{}, "1999-12-31", true},
		{"equal start", Range{Start: "2024-01-08"}, "2024-01-08", true},
		{"before start", Range{Start: "2024-01-08"}, "2024-01-07", false},
		{"equal end", Range{End: "2024-01-08"}, "2024-01-08", true},
		{"after end", Range{End: "2024-01-08"}, "2024-01-09", false},
		{"inside closed", Range{Start: "2024-01-01", End: "2024-01-31"}, "2024-01-15", true},
		{"inverted range", Range{Start: "2024-01-31", End: "2024-01-01"}, "2024-01-15", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rng.Contains(tt.date))
		})
	}
}

func TestRangeValidate(t *testing.T) {
	require.NoError(t, Range{}.Validate())
	require.NoError(t, Range{Start: "2024-01-01"}.Validate())
	assert.ErrorIs(t, Range{Start: "2024-1-1"}.Validate(), ErrInvalidDate)
	assert.ErrorIs(t, Range{End: "nope"}.Validate(), ErrInvalidDate)
}

func TestFilterAndSort(t *testing.T) {
	records := Filter(sampleRecords(), Range{Start: "2024-01-08"})
	require.Len(t, records, 3)

	SortByDateDesc(records)
	got := []Date{records[0].Date, records[1].Date, records[2].Date}
	assert.Equal(t, []Date{"2024-01-10", "2024-01-09", "2024-01-08"}, got)
}

func TestSummarize_OrderIndependent(t *testing.T) {
	records := sampleRecords()
	before := Summarize(records, Range{Start: "2024-01-08"})
	SortByDateDesc(records)
	assert.Equal(t, before, Summarize(records, Range{Start: "2024-01-08"}))
}
