package memory

import (
	"context"
	"testing"
	"time"

	"thali/internal/core"
)

func TestMirrorAppendIsIdempotent(t *testing.T) {
	m := New()
	ctx := context.Background()
	rec := core.MealRecord{Date: "2024-01-10", Morning: true, RecordedAt: time.Now()}

	for range 3 {
		if err := m.AppendRecord(ctx, rec); err != nil {
			t.Fatalf("AppendRecord: %v", err)
		}
	}
	if got := m.Appends(); got != 1 {
		t.Fatalf("Appends = %d, want 1", got)
	}
	if err := m.AppendRecord(ctx, core.MealRecord{Date: "10/01/2024"}); err == nil {
		t.Fatal("expected invalid date to be rejected")
	}
}

func TestMirrorDeleteAndClear(t *testing.T) {
	m := New()
	ctx := context.Background()
	for _, d := range []core.Date{"2024-01-10", "2024-01-08", "2024-01-09"} {
		if err := m.AppendRecord(ctx, core.MealRecord{Date: d}); err != nil {
			t.Fatalf("AppendRecord: %v", err)
		}
	}

	if err := m.DeleteRecord(ctx, "2024-01-09"); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if err := m.DeleteRecord(ctx, "2024-01-09"); err != nil {
		t.Fatalf("DeleteRecord of missing row: %v", err)
	}
	recs := m.Records()
	if len(recs) != 2 || recs[0].Date != "2024-01-08" || recs[1].Date != "2024-01-10" {
		t.Fatalf("unexpected rows: %+v", recs)
	}

	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(m.Records()) != 0 {
		t.Fatal("rows left after Clear")
	}
}
