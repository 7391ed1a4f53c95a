package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storedeck/storedeck/internal/store"
)

type CreateContractorRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	HourlyRate float64 `json:"hourlyRate"`
}

func (s *Server) handleCreateContractor(w http.ResponseWriter, r *http.Request) {
	var req CreateContractorRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" || req.Email == "" {
		httpError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	contractor, err := s.store.CreateContractor(r.Context(), store.NewContractor{
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		HourlyRate: req.HourlyRate,
	})
	if err != nil {
		storeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, contractor)
}

func (s *Server) handleListContractors(w http.ResponseWriter, r *http.Request) {
	contractors, err := s.store.ListContractors(r.Context())
	if err != nil {
		storeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contractors)
}

func (s *Server) handleGetContractor(w http.ResponseWriter, r *http.Request) {
	contractor, err := s.store.GetContractor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contractor)
}

type UpdateContractorRequest struct {
	Name       *string                `json:"name"`
	Email      *string                `json:"email"`
	Role       *string                `json:"role"`
	HourlyRate *float64               `json:"hourlyRate"`
	Status     *store.ContractorStatus `json:"status"`
}

func (s *Server) handleUpdateContractor(w http.ResponseWriter, r *http.Request) {
	var req UpdateContractorRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Status != nil {
		switch *req.Status {
		case store.ContractorActive, store.ContractorPaused, store.ContractorArchived:
		default:
			httpError(w, http.StatusBadRequest, "invalid status: %s", *req.Status)
			return
		}
	}

	contractor, err := s.store.UpdateContractor(r.Context(), chi.URLParam(r, "id"), store.ContractorPatch{
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		HourlyRate: req.HourlyRate,
		Status:     req.Status,
	})
	if err != nil {
		storeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contractor)
}

func (s *Server) handleDeleteContractor(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteContractor(r.Context(), chi.URLParam(r, "id")); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
