package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps values in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
	}
}

// Get returns a copy of the value stored under key.
func (s *MemoryStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key.String()]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

// Set stores a copy of value under key.
func (s *MemoryStore) Set(ctx context.Context, key Key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key.String()] = clone(value)
	return nil
}

// Has reports whether key is present.
func (s *MemoryStore) Has(ctx context.Context, key Key) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key.String()]
	return ok, nil
}

// Apply stores every write under a single lock acquisition.
func (s *MemoryStore) Apply(ctx context.Context, writes []Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range writes {
		s.values[w.Key.String()] = clone(w.Value)
	}
	return nil
}

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
