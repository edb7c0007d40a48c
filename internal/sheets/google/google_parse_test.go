package google

import (
	"testing"
	"time"

	"thali/internal/core"
)

func TestFindRow(t *testing.T) {
	values := [][]interface{}{
		{"Date"},
		{"2024-01-08"},
		{},
		{" 2024-01-10 "},
	}

	tests := []struct {
		date core.Date
		want int
	}{
		{"2024-01-08", 2},
		{"2024-01-10", 4},
		{"2024-01-09", 0},
		{"Date", 1},
	}
	for _, tt := range tests {
		if got := findRow(values, tt.date); got != tt.want {
			t.Errorf("findRow(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}

	if got := findRow(nil, "2024-01-08"); got != 0 {
		t.Errorf("findRow on empty sheet = %d, want 0", got)
	}
}

func TestRecordRow(t *testing.T) {
	loc := time.FixedZone("IST", 5*60*60+30*60)
	rec := core.MealRecord{
		Date:       "2024-01-10",
		Morning:    true,
		RecordedAt: time.Date(2024, 1, 10, 13, 0, 0, 0, loc),
	}

	row := recordRow(rec)
	if len(row) != len(headerRow()) {
		t.Fatalf("row has %d cells, header has %d", len(row), len(headerRow()))
	}
	if row[0] != "2024-01-10" || row[1] != true || row[2] != false {
		t.Errorf("unexpected row: %v", row)
	}
	if row[3] != "2024-01-10T07:30:00Z" {
		t.Errorf("recorded at = %v, want UTC RFC3339", row[3])
	}
}
