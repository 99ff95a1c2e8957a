package session

import (
	"context"
	"sync"
)

// MemStore is an in-process Store for tests and single-node deployments.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]Entry
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]Entry)}
}

func (m *MemStore) Init(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[sessionID]; !ok {
		m.data[sessionID] = []Entry{welcome()}
	}
	return nil
}

func (m *MemStore) Append(_ context.Context, sessionID string, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionID] = append(m.data[sessionID], entry)
	return nil
}

func (m *MemStore) Get(_ context.Context, sessionID string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history, ok := m.data[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]Entry, len(history))
	copy(out, history)
	return out, nil
}
