package state

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is a map-backed store for tests and ephemeral runs. Values
// round-trip through JSON so callers get the same copy semantics as the
// durable backends.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Save persists value under the namespace.
func (s *MemoryStore) Save(namespace string, value any) error {
	if namespace == "" {
		return fmt.Errorf("invalid namespace %q", namespace)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling namespace %q: %w", namespace, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[namespace] = data
	return nil
}

// Load reads the namespace into `into`.
func (s *MemoryStore) Load(namespace string, into any) (bool, error) {
	s.mu.Lock()
	data, ok := s.data[namespace]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, into); err != nil {
		return false, nil
	}
	return true, nil
}

// Delete removes a single namespace.
func (s *MemoryStore) Delete(namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, namespace)
	return nil
}

// Reset removes every namespace.
func (s *MemoryStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string][]byte)
	return nil
}
