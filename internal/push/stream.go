package push

import (
	"errors"
	"net/http"
	"sync"
)

// NDJSONStream is the canonical push transport: a long-lived HTTP
// response the server keeps open, writing one JSON envelope per line
// and flushing after each frame.
type NDJSONStream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	closed  bool
	done    chan struct{}
}

// NewNDJSONStream wraps a response writer. It fails when the writer
// cannot flush (a buffering proxy in the path would starve the client).
func NewNDJSONStream(w http.ResponseWriter) (*NDJSONStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("response writer does not support streaming")
	}
	return &NDJSONStream{w: w, flusher: flusher, done: make(chan struct{})}, nil
}

// WriteEnvelope writes one newline-delimited JSON frame and flushes.
func (s *NDJSONStream) WriteEnvelope(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("stream closed")
	}
	if _, err := s.w.Write(data); err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("\n")); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Close marks the stream dead and releases Wait. The underlying
// response is finished by the handler returning.
func (s *NDJSONStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	return nil
}

// Wait blocks until the stream is closed, either by the registry
// retiring it or by the request context being cancelled upstream.
func (s *NDJSONStream) Wait() <-chan struct{} {
	return s.done
}
