package log

import (
	"errors"
	"testing"
)

func TestFieldsWithError(t *testing.T) {
	f := NewFields().WithError(errors.New("broker down")).WithEvent("record.committed", "2024-01-10")
	if f[FieldError] != "broker down" {
		t.Fatalf("error field = %v", f[FieldError])
	}
	if f[FieldEventType] != "record.committed" || f[FieldDate] != "2024-01-10" {
		t.Fatalf("event fields = %v", f)
	}
	if got := len(f.ToSlice()); got != 6 {
		t.Fatalf("ToSlice length = %d, want 6", got)
	}

	f = NewFields().WithError(nil).WithEvent("records.cleared", "")
	if _, ok := f[FieldError]; ok {
		t.Fatal("nil error should not add a field")
	}
	if _, ok := f[FieldDate]; ok {
		t.Fatal("empty date should not add a field")
	}
}
