package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storedeck/storedeck/internal/stats"
	"github.com/storedeck/storedeck/internal/store"
	"github.com/storedeck/storedeck/internal/wizard"
)

// handleCreateTest accepts the wizard's composite document and submits it.
// Step gating mirrors the wizard UI: steps 1, 2, and 4 must pass before
// the create call reaches the store.
func (s *Server) handleCreateTest(w http.ResponseWriter, r *http.Request) {
	var data wizard.Data
	if err := decodeJSON(r, &data); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	wiz := wizard.New(s.store)
	wiz.Update(data)

	for _, step := range []int{1, 2, 4} {
		if !wiz.CanProceed(step) {
			httpError(w, http.StatusBadRequest, "step %d is incomplete", step)
			return
		}
	}

	test, err := wiz.Submit(r.Context())
	if err != nil {
		// The raw message is surfaced verbatim to the admin UI.
		httpError(w, http.StatusInternalServerError, "%s", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, test)
}

func (s *Server) handleListTests(w http.ResponseWriter, r *http.Request) {
	tests, err := s.store.ListTests(r.Context())
	if err != nil {
		storeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tests)
}

// TestDetail pairs a test with its statistical read.
type TestDetail struct {
	Test  *store.Test   `json:"test"`
	Stats *stats.Result `json:"stats"`
}

func (s *Server) handleGetTest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	test, err := s.store.GetTest(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}

	variantStats, err := s.store.GetVariantStats(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, TestDetail{
		Test:  test,
		Stats: stats.Analyze(test, variantStats),
	})
}

func (s *Server) handlePauseTest(w http.ResponseWriter, r *http.Request) {
	s.transitionTest(w, r, store.StatePaused)
}

func (s *Server) handleResumeTest(w http.ResponseWriter, r *http.Request) {
	s.transitionTest(w, r, store.StateRunning)
}

func (s *Server) transitionTest(w http.ResponseWriter, r *http.Request, state store.TestState) {
	id := chi.URLParam(r, "id")
	if err := s.store.UpdateTestState(r.Context(), id, state, nil); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type DeclareWinnerRequest struct {
	Variant int `json:"variant"`
}

func (s *Server) handleDeclareWinner(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req DeclareWinnerRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	test, err := s.store.GetTest(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}
	if req.Variant < 0 || req.Variant >= len(test.Variants) {
		httpError(w, http.StatusBadRequest, "invalid variant index: %d", req.Variant)
		return
	}

	if err := s.store.UpdateTestState(r.Context(), id, store.StateCompleted, &req.Variant); err != nil {
		storeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteTest(r.Context(), id); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
