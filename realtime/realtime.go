// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrStreamingUnsupported means the ResponseWriter cannot flush, so SSE
// cannot work over it.
var ErrStreamingUnsupported = errors.New("response writer does not support streaming")

// KeepAliveInterval is how often stream owners should emit a comment line
// to hold idle connections open through proxies.
const KeepAliveInterval = 15 * time.Second

// Stream writes server-sent events to one HTTP response. It is not safe
// for concurrent use; one goroutine owns the response.
type Stream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewStream prepares w for server-sent events and sends the headers.
// Fails with ErrStreamingUnsupported when w cannot flush.
func NewStream(w http.ResponseWriter) (*Stream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Stream{w: w, flusher: flusher}, nil
}

// Send writes one named event with a JSON payload and flushes it out.
func (s *Stream) Send(event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding event payload: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Comment writes an SSE comment line. EventSource clients ignore it; it
// only keeps the connection warm.
func (s *Stream) Comment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
