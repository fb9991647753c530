package artifact

import (
	"context"
	"sync"

	"fraudgate/pkg/platform/sentinel"
)

// InMemoryStore keeps artifacts in process memory. Used in development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
}

// Object is one stored artifact.
type Object struct {
	Data     []byte
	MimeType string
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{objects: make(map[string]Object)}
}

func (s *InMemoryStore) Put(_ context.Context, key string, data []byte, mimeType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = Object{Data: append([]byte(nil), data...), MimeType: mimeType}
	return "mem://" + key, nil
}

// Get returns a stored artifact by key. Returns sentinel.ErrNotFound.
func (s *InMemoryStore) Get(_ context.Context, key string) (Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return Object{}, sentinel.ErrNotFound
	}
	return obj, nil
}

func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
