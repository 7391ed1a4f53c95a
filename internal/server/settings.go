package server

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storedeck/storedeck/internal/settings"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	var doc any
	var err error
	switch kind {
	case settings.KindAI:
		doc, err = s.settings.GetAI(r.Context())
	case settings.KindPayout:
		doc, err = s.settings.GetPayout(r.Context())
	case settings.KindSiteConfig:
		doc, err = s.settings.GetSiteConfig(r.Context())
	case settings.KindCommunication:
		doc, err = s.settings.GetCommunication(r.Context())
	default:
		httpError(w, http.StatusNotFound, "unknown settings kind: %s", kind)
		return
	}
	if err != nil {
		storeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// handlePatchSettings merges the changed fields over the stored document
// and returns the full result, which the client adopts as its new
// original snapshot. Last write wins.
func (s *Server) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		httpError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	defer r.Body.Close()

	var doc any
	switch kind {
	case settings.KindAI:
		doc, err = s.settings.PatchAI(r.Context(), body)
	case settings.KindPayout:
		doc, err = s.settings.PatchPayout(r.Context(), body)
	case settings.KindSiteConfig:
		doc, err = s.settings.PatchSiteConfig(r.Context(), body)
	case settings.KindCommunication:
		doc, err = s.settings.PatchCommunication(r.Context(), body)
	default:
		httpError(w, http.StatusNotFound, "unknown settings kind: %s", kind)
		return
	}
	if err != nil {
		httpError(w, http.StatusBadRequest, "%s", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	if err := s.settings.Reset(r.Context(), kind); err != nil {
		httpError(w, http.StatusNotFound, "%s", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
