package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fraudgate/internal/ban/models"
)

// InMemoryStore keeps bans in process memory. Used in tests and single-node
// development setups.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[models.SubjectKind]map[string]*models.BanEntry
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		entries: map[models.SubjectKind]map[string]*models.BanEntry{
			models.KindOrigin:   {},
			models.KindIdentity: {},
		},
	}
}

func (s *InMemoryStore) IsBanned(_ context.Context, kind models.SubjectKind, value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[kind][value]
	return ok, nil
}

// Add keeps the first entry for a (kind, value) pair.
func (s *InMemoryStore) Add(_ context.Context, entry *models.BanEntry) error {
	if entry == nil {
		return fmt.Errorf("ban entry is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byValue, ok := s.entries[entry.Kind]
	if !ok {
		return fmt.Errorf("unknown ban kind %q", entry.Kind)
	}
	if _, exists := byValue[entry.Value]; exists {
		return nil
	}
	copied := *entry
	byValue[entry.Value] = &copied
	return nil
}

func (s *InMemoryStore) List(_ context.Context, kind models.SubjectKind) ([]*models.BanEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.BanEntry, 0, len(s.entries[kind]))
	for _, e := range s.entries[kind] {
		copied := *e
		out = append(out, &copied)
	}
	sortEntries(out)
	return out, nil
}

// Len returns the total number of entries across kinds.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, byValue := range s.entries {
		n += len(byValue)
	}
	return n
}

func sortEntries(entries []*models.BanEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].Value < entries[j].Value
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}
