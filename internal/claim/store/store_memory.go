package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"fraudgate/internal/claim/models"
	"fraudgate/pkg/platform/sentinel"
)

// InMemoryStore keeps claims in process memory. Origins live in their own map
// so listings never carry them.
type InMemoryStore struct {
	mu      sync.RWMutex
	claims  map[string]*models.Claim
	origins map[string]string
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		claims:  make(map[string]*models.Claim),
		origins: make(map[string]string),
	}
}

func (s *InMemoryStore) Create(_ context.Context, claim *models.Claim) error {
	if claim == nil {
		return fmt.Errorf("claim is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.claims[claim.ID]; exists {
		return fmt.Errorf("claim %s: %w", claim.ID, sentinel.ErrConflict)
	}
	s.put(claim)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.claims[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *c
	copied.Origin = s.origins[id]
	return &copied, nil
}

func (s *InMemoryStore) List(_ context.Context, query models.ListQuery) (*models.Page, error) {
	query = query.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.Claim, 0, len(s.claims))
	for _, c := range s.claims {
		if len(query.Statuses) > 0 && !slices.Contains(query.Statuses, c.Status) {
			continue
		}
		if query.After != nil && !c.Before(*query.After) {
			continue
		}
		copied := *c
		matched = append(matched, &copied)
	}
	slices.SortFunc(matched, func(a, b *models.Claim) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})

	page := &models.Page{}
	if len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	page.Claims = matched
	if len(matched) == query.Limit {
		last := matched[len(matched)-1]
		page.Next = &models.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return page, nil
}

func (s *InMemoryStore) SaveDecision(_ context.Context, claim *models.Claim) error {
	if claim == nil {
		return fmt.Errorf("claim is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.claims[claim.ID]
	if !ok {
		s.put(claim)
		return nil
	}
	if existing.Status == models.StatusFraud {
		if claim.Status != models.StatusFraud {
			return fmt.Errorf("claim %s: %w", claim.ID, sentinel.ErrConflict)
		}
		if claim.Origin != "" && s.origins[claim.ID] == "" {
			s.origins[claim.ID] = claim.Origin
		}
		return nil
	}
	existing.Status = claim.Status
	existing.DecisionReason = claim.DecisionReason
	existing.DecidedBy = claim.DecidedBy
	if claim.DecidedAt != nil {
		at := *claim.DecidedAt
		existing.DecidedAt = &at
	}
	return nil
}

// put stores a copy; callers hold the write lock.
func (s *InMemoryStore) put(claim *models.Claim) {
	copied := *claim
	copied.Origin = ""
	if claim.DecidedAt != nil {
		at := *claim.DecidedAt
		copied.DecidedAt = &at
	}
	if claim.ExpectedAmount != nil {
		amount := *claim.ExpectedAmount
		copied.ExpectedAmount = &amount
	}
	s.claims[claim.ID] = &copied
	if claim.Origin != "" {
		s.origins[claim.ID] = claim.Origin
	}
}

// Len returns the number of stored claims.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.claims)
}
