package http

import (
	"fmt"
	"net/http"
	"strings"

	"thali/internal/core"
)

// parseDateParam reads a date from the {date} path segment. "today" stands
// for the current calendar date.
func parseDateParam(r *http.Request, today core.Date) (core.Date, error) {
	raw := strings.TrimSpace(r.PathValue("date"))
	if strings.EqualFold(raw, "today") {
		return today, nil
	}
	return core.ParseDate(raw)
}

// parseRange reads the optional start and end query parameters.
func parseRange(r *http.Request) (core.Range, error) {
	q := r.URL.Query()
	rng := core.Range{
		Start: core.Date(strings.TrimSpace(q.Get("start"))),
		End:   core.Date(strings.TrimSpace(q.Get("end"))),
	}
	if err := rng.Validate(); err != nil {
		return core.Range{}, fmt.Errorf("range: %w", err)
	}
	return rng, nil
}

// confirmed reports whether a destructive request carries confirm=true.
func confirmed(r *http.Request) bool {
	return strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("confirm")), "true")
}
