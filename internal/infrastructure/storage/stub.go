package storage

import (
	"context"
	"errors"
	"sync"
)

// Object is an entry held by MemoryObjectStorage
type Object struct {
	ContentType string
	Body        []byte
}

// MemoryObjectStorage keeps objects in process memory for tests
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]Object
}

// NewMemoryObjectStorage creates a new MemoryObjectStorage
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{objects: make(map[string]Object)}
}

// Put stores a copy of body under key
func (s *MemoryObjectStorage) Put(_ context.Context, key, contentType string, body []byte) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = Object{ContentType: contentType, Body: append([]byte(nil), body...)}
	return nil
}

// Exists reports whether key is present
func (s *MemoryObjectStorage) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Get returns the object stored under key
func (s *MemoryObjectStorage) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}
