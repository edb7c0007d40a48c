package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"thali/internal/core"
	applog "thali/internal/log"
)

type errorResponse struct {
	Error   string `json:"error"`
	Removed *int   `json:"removed,omitempty"`
}

type recordResponse struct {
	Date       string    `json:"date"`
	Display    string    `json:"display"`
	Morning    bool      `json:"morning"`
	Evening    bool      `json:"evening"`
	RecordedAt time.Time `json:"recorded_at"`
}

type dayResponse struct {
	Date       string     `json:"date"`
	Display    string     `json:"display"`
	State      core.State `json:"state"`
	Morning    bool       `json:"morning"`
	Evening    bool       `json:"evening"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

type commitResponse struct {
	Record  recordResponse `json:"record"`
	Adopted bool           `json:"adopted"`
}

type aggregatesResponse struct {
	Morning int `json:"morning"`
	Evening int `json:"evening"`
	Total   int `json:"total"`
	Days    int `json:"days"`
}

type recordsResponse struct {
	Records    []recordResponse   `json:"records"`
	Aggregates aggregatesResponse `json:"aggregates"`
}

type clearResponse struct {
	Removed int `json:"removed"`
}

func newRecordResponse(rec core.MealRecord) recordResponse {
	return recordResponse{
		Date:       string(rec.Date),
		Display:    rec.Date.Display(),
		Morning:    rec.Morning,
		Evening:    rec.Evening,
		RecordedAt: rec.RecordedAt,
	}
}

func newAggregatesResponse(agg core.Aggregates) aggregatesResponse {
	return aggregatesResponse{
		Morning: agg.Morning,
		Evening: agg.Evening,
		Total:   agg.Total,
		Days:    agg.Days,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidDate), errors.Is(err, core.ErrInvalidMeal):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrDateLocked):
		return http.StatusConflict
	case errors.Is(err, core.ErrCorrupt):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the mapped status. Server-side failures are logged
// and their details withheld from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
