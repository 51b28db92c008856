// Package memory keeps snapshot slots in process memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/honeycarbs/listing-watch/internal/domain"
)

// Store is a map-backed snapshot store, safe for concurrent use
type Store struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewStore() *Store {
	return &Store{data: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return "", domain.ErrSnapshotNotFound
	}
	return v, nil
}

func (s *Store) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

func (s *Store) Copy(_ context.Context, srcKey, dstKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[srcKey]
	if !ok {
		return domain.ErrSnapshotNotFound
	}
	s.data[dstKey] = v
	return nil
}

// Keys returns the stored keys in sorted order
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
