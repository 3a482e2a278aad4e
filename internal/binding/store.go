package binding

import (
	"context"
	"sync"
)

// Store persists the vehicle's single binding record
type Store interface {
	Put(ctx context.Context, r Record) error
	Get(ctx context.Context) (Record, error)
	Delete(ctx context.Context) error
}

type memoryStore struct {
	record Record
	bound  bool
	sync.RWMutex
}

// NewMemoryStore initializes an in-memory store, used mainly for testing
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (s *memoryStore) Put(ctx context.Context, r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.Lock()
	s.record = r
	s.bound = true
	s.Unlock()

	return nil
}

func (s *memoryStore) Get(ctx context.Context) (Record, error) {
	s.RLock()
	defer s.RUnlock()

	if !s.bound {
		return Record{}, ErrRecordNotFound
	}

	return s.record, nil
}

func (s *memoryStore) Delete(ctx context.Context) error {
	s.Lock()
	s.record = Record{}
	s.bound = false
	s.Unlock()

	return nil
}
