package repository

import (
	"context"
	"sync"
)

type MemoryStore[V any] struct {
	mu     sync.RWMutex
	keys   []string
	values map[string]V
}

func NewMemoryStore[V any]() *MemoryStore[V] {
	return &MemoryStore[V]{values: map[string]V{}}
}

func (s *MemoryStore[V]) Get(_ context.Context, key string) (V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore[V]) List(_ context.Context) ([]V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]V, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.values[k])
	}
	return out, nil
}

func (s *MemoryStore[V]) Put(_ context.Context, key string, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
	return nil
}
