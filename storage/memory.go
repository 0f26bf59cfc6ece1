package storage

import "sync"

// MemoryStore keeps entries in process memory. Both scopes behave the same;
// nothing survives a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Scope]map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: map[Scope]map[string]string{
			ScopeLocal:   {},
			ScopeSession: {},
		},
	}
}

// Get implements Store.
func (m *MemoryStore) Get(key string, scope Scope) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[scope][key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set implements Store.
func (m *MemoryStore) Set(key, value string, scope Scope) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[scope][key] = value
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(key string, scope Scope) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries[scope], key)
	return nil
}
