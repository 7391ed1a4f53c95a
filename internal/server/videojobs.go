package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storedeck/storedeck/internal/jobs"
	"github.com/storedeck/storedeck/internal/store"
)

type CreateVideoJobRequest struct {
	Title     string `json:"title"`
	SourceURL string `json:"sourceUrl"`
}

func (s *Server) handleCreateVideoJob(w http.ResponseWriter, r *http.Request) {
	var req CreateVideoJobRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Title == "" {
		httpError(w, http.StatusBadRequest, "title is required")
		return
	}

	job, err := s.store.CreateVideoJob(r.Context(), req.Title, req.SourceURL)
	if err != nil {
		storeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, job)
}

func (s *Server) handleListVideoJobs(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListVideoJobs(r.Context())
	if err != nil {
		storeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetVideoJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.GetVideoJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

// UpdateVideoJobRequest is the processing worker's callback payload.
type UpdateVideoJobRequest struct {
	Status   store.JobStatus `json:"status"`
	Progress int             `json:"progress"`
	Error    string          `json:"error"`
}

func (s *Server) handleUpdateVideoJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateVideoJobRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	switch req.Status {
	case store.JobQueued, store.JobProcessing, store.JobComplete, store.JobError, store.JobTimeout:
	default:
		httpError(w, http.StatusBadRequest, "invalid status: %s", req.Status)
		return
	}
	if req.Progress < 0 || req.Progress > 100 {
		httpError(w, http.StatusBadRequest, "progress must be 0-100")
		return
	}

	job, err := s.store.GetVideoJob(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}
	if job.Status.Terminal() {
		httpError(w, http.StatusConflict, "job already %s", job.Status)
		return
	}

	if err := s.store.UpdateVideoJob(r.Context(), id, req.Status, req.Progress, req.Error); err != nil {
		storeError(w, err)
		return
	}

	s.hub.Publish(jobs.StatusEvent{
		Event:    jobs.EventName(req.Status),
		JobID:    id,
		Status:   req.Status,
		Progress: req.Progress,
		Error:    req.Error,
	})

	w.WriteHeader(http.StatusNoContent)
}

// handleVideoJobEvents streams job status over SSE. The connection opens
// with a connected event carrying the current state; a terminal status
// ends the stream.
func (s *Server) handleVideoJobEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		httpError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Subscribe must precede the snapshot read: updates published after
	// this point arrive on the channel, and the snapshot's terminal check
	// covers everything before it.
	events, cancel := s.hub.Subscribe(id)
	defer cancel()

	job, err := s.store.GetVideoJob(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeSSE(w, jobs.StatusEvent{
		Event:    jobs.EventConnected,
		JobID:    job.ID,
		Status:   job.Status,
		Progress: job.Progress,
		Error:    job.Error,
	})
	flusher.Flush()

	if job.Status.Terminal() {
		writeSSE(w, jobs.StatusEvent{
			Event:    jobs.EventName(job.Status),
			JobID:    job.ID,
			Status:   job.Status,
			Progress: job.Progress,
			Error:    job.Error,
		})
		flusher.Flush()
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			writeSSE(w, ev)
			flusher.Flush()
			if ev.Status.Terminal() {
				return
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, ev jobs.StatusEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Event, data)
}
