package server

import (
	"net/http"

	"github.com/storedeck/storedeck/internal/store"
)

type CreateCreatorRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
}

func (s *Server) handleCreateCreator(w http.ResponseWriter, r *http.Request) {
	var req CreateCreatorRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" || req.Email == "" {
		httpError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	creator, err := s.store.CreateCreator(r.Context(), req.Name, req.Email, req.Platform, req.Handle)
	if err != nil {
		storeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, creator)
}

func (s *Server) handleListCreators(w http.ResponseWriter, r *http.Request) {
	creators, err := s.store.ListCreators(r.Context())
	if err != nil {
		storeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, creators)
}

type BulkSendRequest struct {
	CreatorIDs []string `json:"creatorIds"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
}

func (s *Server) handleBulkSend(w http.ResponseWriter, r *http.Request) {
	var req BulkSendRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.CreatorIDs) == 0 {
		httpError(w, http.StatusBadRequest, "creatorIds is required")
		return
	}
	if req.Subject == "" {
		httpError(w, http.StatusBadRequest, "subject is required")
		return
	}

	messages, err := s.comms.EnqueueBulk(r.Context(), req.CreatorIDs, req.Subject, req.Body)
	if err != nil {
		storeError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, messages)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	status := store.MessageStatus(r.URL.Query().Get("status"))

	messages, err := s.store.ListMessages(r.Context(), status)
	if err != nil {
		storeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}
