// Package recording persists emitted event streams for later decoding.
//
// A Recorder is a transport listener that appends every event it receives to
// a Store under one session ID. Events are stored as wire frames, so a
// recorded session can be replayed through wire.Decode without knowing the
// emitting process.
package recording

import (
	"errors"
	"time"

	"github.com/randalmurphal/fnevents/pkg/fnevents/wire"
)

// Store persists recorded events.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores a frame at the next sequence number of a session and
	// returns that number. Sequences start at 1.
	Append(sessionID string, eventID wire.EventID, frame []byte) (int64, error)

	// List returns all records of a session, ordered by sequence.
	// Returns empty slice (not error) if the session does not exist.
	List(sessionID string) ([]Record, error)

	// Sessions returns a summary of every session, oldest first.
	Sessions() ([]SessionInfo, error)

	// DeleteSession removes a session.
	// Returns nil if the session does not exist.
	DeleteSession(sessionID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Record is one stored event.
type Record struct {
	SessionID string
	Sequence  int64
	Timestamp time.Time
	EventID   wire.EventID
	Frame     []byte
}

// Event decodes the stored frame.
func (r Record) Event() (wire.Event, error) {
	return wire.Decode(r.Frame)
}

// SessionInfo summarizes a session without loading its frames.
type SessionInfo struct {
	ID        string
	StartedAt time.Time
	LastAt    time.Time
	Events    int64
}

// Sentinel errors for store operations.
var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("recording store closed")

	// ErrSessionRequired indicates an empty session ID.
	ErrSessionRequired = errors.New("session id is required")
)

// timeFormat sorts lexicographically in UTC.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"
