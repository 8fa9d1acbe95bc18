package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/one-dragon/onedragon-agent/pkg/config"
)

// MemoryStore is a process-lifetime Store backed by a map.
type MemoryStore[T Record] struct {
	mu      sync.RWMutex
	records map[Key]T
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore[T Record]() *MemoryStore[T] {
	return &MemoryStore[T]{records: make(map[Key]T)}
}

func (s *MemoryStore[T]) Create(_ context.Context, record T) error {
	key := record.StoreKey()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; ok {
		return fmt.Errorf("record %s/%s: %w", key.AppName, key.ID, config.ErrAlreadyExists)
	}
	s.records[key] = record
	return nil
}

func (s *MemoryStore[T]) Get(_ context.Context, key Key) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[key]
	return record, ok, nil
}

func (s *MemoryStore[T]) Update(_ context.Context, record T) error {
	key := record.StoreKey()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		return fmt.Errorf("record %s/%s: %w", key.AppName, key.ID, config.ErrNotFound)
	}
	s.records[key] = record
	return nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

func (s *MemoryStore[T]) List(_ context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	return out, nil
}
