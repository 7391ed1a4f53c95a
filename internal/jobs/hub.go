package jobs

import (
	"sync"

	"github.com/storedeck/storedeck/internal/store"
)

// Event names on the job status stream.
const (
	EventConnected = "connected"
	EventStatus    = "status"
	EventComplete  = "complete"
	EventError     = "error"
	EventTimeout   = "timeout"
)

// StatusEvent is one typed event on a job's status stream.
type StatusEvent struct {
	Event    string          `json:"event"`
	JobID    string          `json:"jobId"`
	Status   store.JobStatus `json:"status"`
	Progress int             `json:"progress"`
	Error    string          `json:"error,omitempty"`
}

// EventName maps a job status onto its stream event name: terminal
// statuses get their own event type, everything else is a status update.
func EventName(status store.JobStatus) string {
	switch status {
	case store.JobComplete:
		return EventComplete
	case store.JobError:
		return EventError
	case store.JobTimeout:
		return EventTimeout
	default:
		return EventStatus
	}
}

// Hub fans job status events out to stream subscribers. Slow subscribers
// drop events rather than block the publisher, except that a terminal
// event evicts the oldest buffered update so it is always delivered.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan StatusEvent]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan StatusEvent]struct{})}
}

// Subscribe registers for one job's events. The returned cancel must be
// called when the subscriber goes away.
func (h *Hub) Subscribe(jobID string) (<-chan StatusEvent, func()) {
	ch := make(chan StatusEvent, 8)

	h.mu.Lock()
	if h.subs[jobID] == nil {
		h.subs[jobID] = make(map[chan StatusEvent]struct{})
	}
	h.subs[jobID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.subs[jobID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, jobID)
			}
		}
	}

	return ch, cancel
}

// Publish delivers an event to every subscriber of the job.
func (h *Hub) Publish(ev StatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	terminal := ev.Status.Terminal()
	for ch := range h.subs[ev.JobID] {
		select {
		case ch <- ev:
		default:
			if !terminal {
				continue
			}
			// A terminal event must reach the subscriber; evict the
			// oldest buffered update to make room. No other Publish can
			// run while the lock is held, so the retry cannot race a
			// competing send.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}
