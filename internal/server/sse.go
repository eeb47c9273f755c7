package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/jonathan/careerstack/internal/pipeline"
)

// Event names on the batch scrape stream.
const (
	EventProgress = "progress"
	EventResult   = "result"
	EventError    = "error"
	EventComplete = "complete"
)

var errStreamClosed = errors.New("event stream closed")

// SSEWriter writes Server-Sent Events. Every event carries an increasing id so the extension
// can tell results apart when it reconnects. Progress arrives from several workers, so writes
// are serialized; after the first failed write the stream is treated as closed.
type SSEWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
	closed  bool
}

// NewSSEWriter sends the stream headers and a 200 status.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher, nextID: 1}, nil
}

// WriteEvent marshals data as the event payload.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errStreamClosed
	}
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		s.closed = true
		return err
	}
	s.nextID++
	s.flusher.Flush()
	return nil
}

// Closed reports whether a write has failed, usually because the client went away.
func (s *SSEWriter) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// WriteProgress forwards one pipeline progress event.
func (s *SSEWriter) WriteProgress(event pipeline.ProgressEvent) {
	s.WriteEvent(EventProgress, event) //nolint:errcheck
}

// WriteResult sends the report for one source.
func (s *SSEWriter) WriteResult(report pipeline.Report) {
	s.WriteEvent(EventResult, report) //nolint:errcheck
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent(EventError, map[string]string{"error": message}) //nolint:errcheck
}

// WriteComplete ends the stream with the run summary.
func (s *SSEWriter) WriteComplete(status string, total, failed int) {
	s.WriteEvent(EventComplete, map[string]any{ //nolint:errcheck
		"status": status,
		"total":  total,
		"failed": failed,
	})
}
