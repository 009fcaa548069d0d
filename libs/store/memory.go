package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errClosed = errors.New("history store is closed")

// memoryHistory is an in-process History, used in tests and single-node runs
// where durability is not needed.
type memoryHistory struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
}

// NewMemory builds an in-memory History.
func NewMemory() History {
	return &memoryHistory{sessions: make(map[string][]Turn)}
}

func (m *memoryHistory) Append(ctx context.Context, sessionID string, turns ...Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		return errClosed
	}
	for _, t := range turns {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		m.sessions[sessionID] = append(m.sessions[sessionID], t)
	}
	return nil
}

func (m *memoryHistory) Read(ctx context.Context, sessionID string) ([]Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sessions == nil {
		return nil, errClosed
	}
	turns := m.sessions[sessionID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (m *memoryHistory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = nil
	return nil
}
