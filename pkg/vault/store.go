package vault

import (
	"context"
	"strings"
	"sync"
)

// Store is a scoped key-value persistence contract; entries survive
// process restarts when backed by an on-disk implementation
type Store interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

type memoryStore struct {
	entries map[string][]byte
	sync.RWMutex
}

// NewMemoryStore initializes an in-memory store, used mainly for testing
func NewMemoryStore() Store {
	return &memoryStore{
		entries: make(map[string][]byte),
	}
}

func (s *memoryStore) Put(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}

	s.Lock()
	s.entries[key] = value
	s.Unlock()

	return nil
}

func (s *memoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.RLock()
	value, ok := s.entries[key]
	s.RUnlock()

	if !ok {
		return nil, ErrEntryNotFound
	}

	return value, nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	s.Lock()
	delete(s.entries, key)
	s.Unlock()

	return nil
}
