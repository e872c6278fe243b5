// Package store provides a generic keyed in-memory record store that
// concrete DAOs embed instead of repeating identical map bookkeeping.
package store

import (
	"context"
	"sync"

	"github.com/viant/gator/service/dao"
)

// MemoryStore keeps records of type *T keyed by K. It implements
// dao.Service; embedders that need filtered listings override List. Keys are
// derived from records with the supplied selector, so a record can never be
// stored under a key that disagrees with its identity field.
type MemoryStore[K comparable, T any] struct {
	mu       sync.RWMutex
	records  map[K]*T
	selector func(*T) K
}

// NewMemoryStore creates an empty store; selector extracts the record key,
// usually the ID field.
func NewMemoryStore[K comparable, T any](selector func(*T) K) *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		records:  map[K]*T{},
		selector: selector,
	}
}

// Save stores or overwrites a record; nil records are ignored.
func (s *MemoryStore[K, T]) Save(_ context.Context, record *T) error {
	if record == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[s.selector(record)] = record
	return nil
}

// Load returns the record for the key or nil when absent.
func (s *MemoryStore[K, T]) Load(_ context.Context, key K) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[key], nil
}

// Delete removes the record for the key.
func (s *MemoryStore[K, T]) Delete(_ context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// List returns every stored record in unspecified order.
func (s *MemoryStore[K, T]) List(_ context.Context, _ ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := make([]*T, 0, len(s.records))
	for _, record := range s.records {
		ret = append(ret, record)
	}
	return ret, nil
}
