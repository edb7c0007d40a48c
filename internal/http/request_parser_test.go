package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"thali/internal/core"
)

func TestParseDateParam(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    core.Date
		wantErr bool
	}{
		{name: "iso date", value: "2024-01-10", want: "2024-01-10"},
		{name: "today alias", value: "today", want: "2024-03-01"},
		{name: "today any case", value: "Today", want: "2024-03-01"},
		{name: "short month", value: "2024-1-10", wantErr: true},
		{name: "impossible day", value: "2023-02-29", wantErr: true},
		{name: "empty", value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.SetPathValue("date", tt.value)

			got, err := parseDateParam(req, "2024-03-01")
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidDate) {
					t.Fatalf("parseDateParam(%q) error = %v, want ErrInvalidDate", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDateParam(%q) unexpected error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("parseDateParam(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		query   string
		want    core.Range
		wantErr bool
	}{
		{query: "", want: core.Range{}},
		{query: "start=2024-01-01", want: core.Range{Start: "2024-01-01"}},
		{query: "end=2024-01-31", want: core.Range{End: "2024-01-31"}},
		{query: "start=2024-01-01&end=2024-01-31", want: core.Range{Start: "2024-01-01", End: "2024-01-31"}},
		{query: "start=+2024-01-01+", want: core.Range{Start: "2024-01-01"}},
		{query: "start=01/01/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/records?"+tt.query, nil)
			got, err := parseRange(req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRange(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseRange(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestConfirmed(t *testing.T) {
	for query, want := range map[string]bool{
		"":              false,
		"confirm=1":     false,
		"confirm=yes":   false,
		"confirm=true":  true,
		"confirm=TRUE":  true,
		"confirm=false": false,
	} {
		req := httptest.NewRequest(http.MethodDelete, "/api/records?"+query, nil)
		if got := confirmed(req); got != want {
			t.Errorf("confirmed(%q) = %v, want %v", query, got, want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrInvalidDate, http.StatusBadRequest},
		{core.ErrInvalidMeal, http.StatusBadRequest},
		{core.ErrNotFound, http.StatusNotFound},
		{core.ErrDateLocked, http.StatusConflict},
		{core.ErrCorrupt, http.StatusUnprocessableEntity},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
