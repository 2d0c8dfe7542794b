package trace

import (
	"sync"
	"time"
)

// MemoryStore is an in-memory trace store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]Entry // contextID -> ordered entries
	closed  bool
}

// NewMemoryStore creates a new in-memory trace store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]Entry),
	}
}

// Append implements Store.
func (m *MemoryStore) Append(contextID, location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	m.entries[contextID] = append(m.entries[contextID], Entry{
		ContextID:  contextID,
		Sequence:   len(m.entries[contextID]) + 1,
		Location:   location,
		RecordedAt: time.Now().UTC(),
	})
	return nil
}

// List implements Store.
func (m *MemoryStore) List(contextID string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	entries := m.entries[contextID]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// DeleteContext implements Store.
func (m *MemoryStore) DeleteContext(contextID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.entries, contextID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.entries = nil
	return nil
}

// Len returns the total number of entries across all contexts.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, entries := range m.entries {
		count += len(entries)
	}
	return count
}
