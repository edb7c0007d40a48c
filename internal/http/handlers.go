package http

import (
	"context"
	"net/http"

	"thali/internal/core"
	applog "thali/internal/log"
)

func (s *Server) dayView(ctx context.Context, date core.Date) (dayResponse, error) {
	view := dayResponse{Date: string(date), Display: date.Display()}

	state, rec, err := s.tracker.StateOf(ctx, date)
	if err != nil {
		return dayResponse{}, err
	}
	view.State = state
	if state == core.Locked {
		view.Morning, view.Evening = rec.Morning, rec.Evening
		recordedAt := rec.RecordedAt
		view.RecordedAt = &recordedAt
		return view, nil
	}

	sel, err := s.tracker.Selections(ctx, date)
	if err != nil {
		return dayResponse{}, err
	}
	view.Morning, view.Evening = sel.Morning, sel.Evening
	return view, nil
}

func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, s.today())
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.dayView(r.Context(), date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, s.today())
	if err != nil {
		writeError(w, r, err)
		return
	}
	meal, err := core.ParseMeal(r.PathValue("meal"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	sel, err := s.tracker.Toggle(r.Context(), date, meal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dayResponse{
		Date:    string(date),
		Display: date.Display(),
		State:   core.Open,
		Morning: sel.Morning,
		Evening: sel.Evening,
	})
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, s.today())
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.tracker.Commit(r.Context(), date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if res.Adopted {
		status = http.StatusOK
	}
	writeJSON(w, status, commitResponse{
		Record:  newRecordResponse(res.Record),
		Adopted: res.Adopted,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.handleRemove(w, r, s.tracker.DeleteRecord)
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	s.handleRemove(w, r, s.tracker.UnlockRecord)
}

// handleRemove runs a delete or unlock and answers with the reopened day.
func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request, remove func(context.Context, core.Date) error) {
	date, err := parseDateParam(r, s.today())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := remove(r.Context(), date); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dayResponse{
		Date:    string(date),
		Display: date.Display(),
		State:   core.Open,
	})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	records, err := s.tracker.Records(r.Context(), rng)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Totals come from the same snapshot as the listed records.
	resp := recordsResponse{
		Records:    make([]recordResponse, 0, len(records)),
		Aggregates: newAggregatesResponse(core.Summarize(records, rng)),
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, newRecordResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAggregates(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	agg, err := s.tracker.Aggregates(r.Context(), rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAggregatesResponse(agg))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "clearing all records requires confirm=true"})
		return
	}

	removed, err := s.tracker.ClearAll(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Clear interrupted",
			applog.FieldRemoved, removed,
			applog.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "clear interrupted; remaining records are still stored",
			Removed: &removed,
		})
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{Removed: removed})
}
