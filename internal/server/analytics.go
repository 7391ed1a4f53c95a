package server

import (
	"net/http"
	"time"

	"github.com/storedeck/storedeck/internal/analytics"
)

// handleAnalytics builds the dashboard report for ?start=YYYY-MM-DD&end=…
// (inclusive days). Defaults to the trailing 7 days.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	rng := analytics.DateRange{Start: now.AddDate(0, 0, -6), End: now}

	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid start date: %s", v)
			return
		}
		rng.Start = t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid end date: %s", v)
			return
		}
		rng.End = t
	}
	if rng.End.Before(rng.Start) {
		httpError(w, http.StatusBadRequest, "end date before start date")
		return
	}

	report, err := s.analytics.Generate(r.Context(), rng)
	if err != nil {
		storeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

type RecordOrderRequest struct {
	TotalCents int64  `json:"totalCents"`
	CostCents  int64  `json:"costCents"`
	Country    string `json:"country"`
	Channel    string `json:"channel"`
}

func (s *Server) handleRecordOrder(w http.ResponseWriter, r *http.Request) {
	var req RecordOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.TotalCents <= 0 {
		httpError(w, http.StatusBadRequest, "totalCents must be positive")
		return
	}
	if req.Channel == "" {
		req.Channel = "organic"
	}

	order, err := s.store.RecordOrder(r.Context(), req.TotalCents, req.CostCents, req.Country, req.Channel)
	if err != nil {
		storeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

type RecordExpenseRequest struct {
	Category string `json:"category"`
	Channel  string `json:"channel"`
	Cents    int64  `json:"cents"`
}

func (s *Server) handleRecordExpense(w http.ResponseWriter, r *http.Request) {
	var req RecordExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Category == "" {
		httpError(w, http.StatusBadRequest, "category is required")
		return
	}
	if req.Cents <= 0 {
		httpError(w, http.StatusBadRequest, "cents must be positive")
		return
	}

	expense, err := s.store.RecordExpense(r.Context(), req.Category, req.Channel, req.Cents)
	if err != nil {
		storeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, expense)
}

type FunnelEventRequest struct {
	Stage     string `json:"stage"`
	VisitorID string `json:"visitorId"`
}

func (s *Server) handleRecordFunnelEvent(w http.ResponseWriter, r *http.Request) {
	var req FunnelEventRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.VisitorID == "" {
		httpError(w, http.StatusBadRequest, "visitorId is required")
		return
	}

	valid := false
	for _, stage := range analytics.Stages {
		if req.Stage == stage {
			valid = true
			break
		}
	}
	if !valid {
		httpError(w, http.StatusBadRequest, "invalid stage: %s", req.Stage)
		return
	}

	if err := s.store.RecordFunnelEvent(r.Context(), req.Stage, req.VisitorID); err != nil {
		storeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
