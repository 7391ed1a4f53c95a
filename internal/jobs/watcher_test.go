package jobs

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storedeck/storedeck/internal/store"
)

func sseHandler(fn func(w http.ResponseWriter, conn int64)) (*httptest.Server, *int64) {
	var conns int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&conns, 1)
		w.Header().Set("Content-Type", "text/event-stream")
		fn(w, n)
	}))
	return srv, &conns
}

func writeEvent(w http.ResponseWriter, name, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func collect(t *testing.T, events <-chan StatusEvent) []StatusEvent {
	t.Helper()
	var out []StatusEvent
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestWatcher_StopsOnTerminalEvent(t *testing.T) {
	srv, _ := sseHandler(func(w http.ResponseWriter, _ int64) {
		writeEvent(w, EventConnected, `{"event":"connected","jobId":"j1"}`)
		writeEvent(w, EventStatus, `{"event":"status","jobId":"j1","status":"processing","progress":50}`)
		writeEvent(w, EventComplete, `{"event":"complete","jobId":"j1","status":"complete","progress":100}`)
	})
	defer srv.Close()

	w := &Watcher{URL: srv.URL, Backoff: 10 * time.Millisecond}
	events := make(chan StatusEvent, 16)

	require.NoError(t, w.Watch(context.Background(), events))

	got := collect(t, events)
	require.Len(t, got, 3)
	assert.Equal(t, EventConnected, got[0].Event)
	assert.Equal(t, 50, got[1].Progress)
	assert.Equal(t, store.JobComplete, got[2].Status)
}

func TestWatcher_ReconnectsAfterDrop(t *testing.T) {
	srv, conns := sseHandler(func(w http.ResponseWriter, conn int64) {
		if conn == 1 {
			// First connection dies after one status event.
			writeEvent(w, EventStatus, `{"event":"status","jobId":"j1","status":"processing","progress":10}`)
			return
		}
		writeEvent(w, EventComplete, `{"event":"complete","jobId":"j1","status":"complete","progress":100}`)
	})
	defer srv.Close()

	w := &Watcher{URL: srv.URL, Backoff: 10 * time.Millisecond}
	events := make(chan StatusEvent, 16)

	require.NoError(t, w.Watch(context.Background(), events))

	got := collect(t, events)
	require.Len(t, got, 2)
	assert.Equal(t, EventComplete, got[1].Event)
	assert.EqualValues(t, 2, atomic.LoadInt64(conns))
}

func TestWatcher_RetriesNonOKResponses(t *testing.T) {
	var conns int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&conns, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		writeEvent(w, EventError, `{"event":"error","jobId":"j1","status":"error","error":"render crashed"}`)
	}))
	defer srv.Close()

	w := &Watcher{URL: srv.URL, Backoff: 5 * time.Millisecond}
	events := make(chan StatusEvent, 16)

	require.NoError(t, w.Watch(context.Background(), events))

	got := collect(t, events)
	require.Len(t, got, 1)
	assert.Equal(t, "render crashed", got[0].Error)
	assert.EqualValues(t, 3, atomic.LoadInt64(&conns))
}

func TestWatcher_ContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		// Never send a terminal event; hold the connection open until the
		// client goes away.
		writeEvent(w, EventConnected, `{"event":"connected","jobId":"j1"}`)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{URL: srv.URL, Backoff: 10 * time.Millisecond}
	events := make(chan StatusEvent, 16)

	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, events) }()

	<-events // wait for the connected event
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcher_SendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "text/event-stream")
		writeEvent(w, EventComplete, `{"event":"complete","jobId":"j1","status":"complete"}`)
	}))
	defer srv.Close()

	w := &Watcher{URL: srv.URL, Token: "secret", Backoff: time.Millisecond}
	events := make(chan StatusEvent, 16)
	require.NoError(t, w.Watch(context.Background(), events))
	collect(t, events)

	assert.Equal(t, "Bearer secret", gotAuth)
}
