package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storedeck/storedeck/internal/store"
)

func TestEventName(t *testing.T) {
	assert.Equal(t, EventStatus, EventName(store.JobQueued))
	assert.Equal(t, EventStatus, EventName(store.JobProcessing))
	assert.Equal(t, EventComplete, EventName(store.JobComplete))
	assert.Equal(t, EventError, EventName(store.JobError))
	assert.Equal(t, EventTimeout, EventName(store.JobTimeout))
}

func TestHub_PublishToSubscribers(t *testing.T) {
	h := NewHub()

	ch1, cancel1 := h.Subscribe("job-1")
	defer cancel1()
	ch2, cancel2 := h.Subscribe("job-1")
	defer cancel2()
	other, cancelOther := h.Subscribe("job-2")
	defer cancelOther()

	h.Publish(StatusEvent{Event: EventStatus, JobID: "job-1", Status: store.JobProcessing, Progress: 30})

	ev := <-ch1
	assert.Equal(t, 30, ev.Progress)
	ev = <-ch2
	assert.Equal(t, "job-1", ev.JobID)

	select {
	case ev := <-other:
		t.Fatalf("job-2 subscriber received %+v", ev)
	default:
	}
}

func TestHub_CancelStopsDelivery(t *testing.T) {
	h := NewHub()

	ch, cancel := h.Subscribe("job-1")
	cancel()

	h.Publish(StatusEvent{Event: EventStatus, JobID: "job-1"})

	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("canceled subscriber received %+v", ev)
		}
	default:
	}
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()

	ch, cancel := h.Subscribe("job-1")
	defer cancel()

	// More events than the channel buffers; Publish must never block.
	for i := 0; i < 50; i++ {
		h.Publish(StatusEvent{Event: EventStatus, JobID: "job-1", Progress: i})
	}

	// The earliest events survive, the overflow is dropped.
	ev := <-ch
	assert.Equal(t, 0, ev.Progress)
}

func TestHub_TerminalEventNeverDropped(t *testing.T) {
	h := NewHub()

	ch, cancel := h.Subscribe("job-1")
	defer cancel()

	// Saturate the buffer with status updates. With no reader draining,
	// a plain publish would drop here.
	for i := 0; i < 20; i++ {
		h.Publish(StatusEvent{Event: EventStatus, JobID: "job-1", Status: store.JobProcessing, Progress: i})
	}

	h.Publish(StatusEvent{Event: EventComplete, JobID: "job-1", Status: store.JobComplete, Progress: 100})

	var gotTerminal bool
	for {
		select {
		case ev := <-ch:
			if ev.Status.Terminal() {
				gotTerminal = true
			}
		default:
			assert.True(t, gotTerminal, "terminal event missing from buffered stream")
			return
		}
	}
}
