package recording

import (
	"sort"
	"sync"
	"time"

	"github.com/randalmurphal/fnevents/pkg/fnevents/wire"
)

// MemoryStore is an in-memory store for tests and short-lived tools.
// Data is lost when the process exits.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Record
	closed   bool
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]Record),
	}
}

// Append implements Store.
func (m *MemoryStore) Append(sessionID string, eventID wire.EventID, frame []byte) (int64, error) {
	if sessionID == "" {
		return 0, ErrSessionRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrStoreClosed
	}

	// Copy data to avoid retaining caller's slice
	stored := make([]byte, len(frame))
	copy(stored, frame)

	seq := int64(len(m.sessions[sessionID]) + 1)
	m.sessions[sessionID] = append(m.sessions[sessionID], Record{
		SessionID: sessionID,
		Sequence:  seq,
		Timestamp: time.Now().UTC(),
		EventID:   eventID,
		Frame:     stored,
	})
	return seq, nil
}

// List implements Store.
func (m *MemoryStore) List(sessionID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	recs, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}

	out := make([]Record, len(recs))
	for i, r := range recs {
		r.Frame = append([]byte(nil), r.Frame...)
		out[i] = r
	}
	return out, nil
}

// Sessions implements Store.
func (m *MemoryStore) Sessions() ([]SessionInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	infos := make([]SessionInfo, 0, len(m.sessions))
	for id, recs := range m.sessions {
		if len(recs) == 0 {
			continue
		}
		infos = append(infos, SessionInfo{
			ID:        id,
			StartedAt: recs[0].Timestamp,
			LastAt:    recs[len(recs)-1].Timestamp,
			Events:    int64(len(recs)),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].StartedAt.Equal(infos[j].StartedAt) {
			return infos[i].StartedAt.Before(infos[j].StartedAt)
		}
		return infos[i].ID < infos[j].ID
	})
	return infos, nil
}

// DeleteSession implements Store.
func (m *MemoryStore) DeleteSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.sessions, sessionID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.sessions = nil
	return nil
}

// Len returns the total number of records across all sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, recs := range m.sessions {
		count += len(recs)
	}
	return count
}
