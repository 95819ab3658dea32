package store

import (
	"sync"

	"authstate/internal/domain"
)

// MemoryStore keeps values in process memory. Nothing survives Close.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string][]byte)}
}

// ReadRaw returns a copy of the value for key, or nil if absent.
func (s *MemoryStore) ReadRaw(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyBytes(s.m[key]), nil
}

// WriteRaw stores a copy of value; nil removes the key.
func (s *MemoryStore) WriteRaw(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value == nil {
		delete(s.m, key)
		return nil
	}
	s.m[key] = copyBytes(value)
	return nil
}

// Keys returns the number of stored keys.
func (s *MemoryStore) Keys() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Close drops all values.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[string][]byte)
	return nil
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Compile-time assertion that MemoryStore implements domain.RawStore.
var _ domain.RawStore = (*MemoryStore)(nil)
