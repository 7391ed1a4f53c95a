package jobs

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBackoff is the fixed delay between stream reconnect attempts.
const DefaultBackoff = 5 * time.Second

// Watcher follows a job's server-push status stream. On any connection or
// read error it reconnects after a fixed backoff with no retry cap; it
// stops only when a terminal event arrives or the context is canceled.
type Watcher struct {
	URL     string
	Token   string
	Client  *http.Client
	Backoff time.Duration
	Logger  *zap.Logger
}

// Watch streams events into the channel until a terminal event
// (complete, error, timeout) or context cancellation. The events channel
// is closed before return.
func (w *Watcher) Watch(ctx context.Context, events chan<- StatusEvent) error {
	defer close(events)

	backoff := w.Backoff
	if backoff == 0 {
		backoff = DefaultBackoff
	}
	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}

	for {
		terminal, err := w.stream(ctx, client, events)
		if terminal {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if w.Logger != nil {
			w.Logger.Warn("job stream disconnected, retrying",
				zap.String("url", w.URL),
				zap.Duration("backoff", backoff),
				zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// stream runs a single connection. It reports terminal=true when a
// terminal event was seen, otherwise returns the error that broke the
// connection.
func (w *Watcher) stream(ctx context.Context, client *http.Client, events chan<- StatusEvent) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.URL, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")
	if w.Token != "" {
		req.Header.Set("Authorization", "Bearer "+w.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	var eventName, data string

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "":
			if eventName == "" && data == "" {
				continue
			}
			ev, err := decodeEvent(eventName, data)
			eventName, data = "", ""
			if err != nil {
				continue
			}

			select {
			case events <- ev:
			case <-ctx.Done():
				return false, ctx.Err()
			}

			if ev.Event == EventComplete || ev.Event == EventError || ev.Event == EventTimeout {
				return true, nil
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return false, err
	}
	return false, fmt.Errorf("stream closed by server")
}

func decodeEvent(name, data string) (StatusEvent, error) {
	var ev StatusEvent
	if data != "" {
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return StatusEvent{}, err
		}
	}
	if name != "" {
		ev.Event = name
	}
	return ev, nil
}
