package transport

import (
	"io"
	"sync"

	"github.com/randalmurphal/fnevents/pkg/fnevents/wire"
)

// StreamListener writes each event as a JSON line to an io.Writer.
type StreamListener struct {
	mu    sync.Mutex
	w     io.Writer
	count int
	err   error
}

// NewStreamListener creates a StreamListener.
func NewStreamListener(w io.Writer) *StreamListener {
	return &StreamListener{w: w}
}

// Handle implements Listener. After the first write error further events
// are discarded.
func (s *StreamListener) Handle(evt wire.Event) {
	line, err := wire.MarshalJSONLine(evt)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	if err != nil {
		s.err = err
		return
	}
	if _, err := s.w.Write(line); err != nil {
		s.err = err
		return
	}
	s.count++
}

// Count returns the number of lines written.
func (s *StreamListener) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Err returns the first write error.
func (s *StreamListener) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Flush flushes the writer if it supports it.
func (s *StreamListener) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if flusher, ok := s.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}
