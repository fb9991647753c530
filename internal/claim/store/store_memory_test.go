package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudgate/internal/claim/models"
	"fraudgate/pkg/platform/sentinel"
)

var base = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func testClaim(id string, at time.Time) *models.Claim {
	return &models.Claim{
		ID:          id,
		OriginHash:  "hash",
		Origin:      "203.0.113.5",
		Identity:    "buyer@example.com",
		ContactInfo: "Not Provided",
		Verdict:     models.Verdict{IsAuthentic: true, Confidence: 0.5, Reason: "classification unavailable"},
		Status:      models.StatusPendingReview,
		CreatedAt:   at,
	}
}

func TestInMemoryStore_CreateGet(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	require.NoError(t, s.Create(ctx, testClaim("c1", base)))

	got, err := s.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.5", got.Origin)
	assert.Equal(t, models.StatusPendingReview, got.Status)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	err = s.Create(ctx, testClaim("c1", base))
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestInMemoryStore_List(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Create(ctx, testClaim(fmt.Sprintf("c%d", i), base.Add(time.Duration(i)*time.Minute))))
	}

	t.Run("newest first with cursor", func(t *testing.T) {
		page, err := s.List(ctx, models.ListQuery{Limit: 2})
		require.NoError(t, err)
		require.Len(t, page.Claims, 2)
		assert.Equal(t, "c4", page.Claims[0].ID)
		assert.Equal(t, "c3", page.Claims[1].ID)
		require.NotNil(t, page.Next)

		page, err = s.List(ctx, models.ListQuery{Limit: 2, After: page.Next})
		require.NoError(t, err)
		assert.Equal(t, "c2", page.Claims[0].ID)
		assert.Equal(t, "c1", page.Claims[1].ID)

		page, err = s.List(ctx, models.ListQuery{Limit: 2, After: page.Next})
		require.NoError(t, err)
		require.Len(t, page.Claims, 1)
		assert.Nil(t, page.Next)
	})

	t.Run("never exposes origins", func(t *testing.T) {
		page, err := s.List(ctx, models.ListQuery{})
		require.NoError(t, err)
		for _, c := range page.Claims {
			assert.Empty(t, c.Origin)
		}
	})

	t.Run("status filter", func(t *testing.T) {
		fraud := testClaim("c1", base.Add(time.Minute))
		fraud.Status = models.StatusFraud
		require.NoError(t, s.SaveDecision(ctx, fraud))

		page, err := s.List(ctx, models.ListQuery{Statuses: []models.Status{models.StatusFraud}})
		require.NoError(t, err)
		require.Len(t, page.Claims, 1)
		assert.Equal(t, "c1", page.Claims[0].ID)
	})
}

func TestInMemoryStore_SaveDecision(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts unknown claims", func(t *testing.T) {
		s := NewInMemory()
		c := testClaim("audit-1", base)
		c.Status = models.StatusFraud
		require.NoError(t, s.SaveDecision(ctx, c))

		got, err := s.Get(ctx, "audit-1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusFraud, got.Status)
		assert.Empty(t, got.EvidenceRef)
	})

	t.Run("fraud is never overwritten", func(t *testing.T) {
		s := NewInMemory()
		c := testClaim("c1", base)
		c.Status = models.StatusFraud
		c.DecisionReason = "automated fraud"
		require.NoError(t, s.SaveDecision(ctx, c))

		c.Status = models.StatusApproved
		c.DecisionReason = "manual review"
		assert.ErrorIs(t, s.SaveDecision(ctx, c), sentinel.ErrConflict)

		c.Status = models.StatusFraud
		c.DecisionReason = "manual fraud"
		require.NoError(t, s.SaveDecision(ctx, c), "re-marking fraud is idempotent")

		got, _ := s.Get(ctx, "c1")
		assert.Equal(t, models.StatusFraud, got.Status)
		assert.Equal(t, "automated fraud", got.DecisionReason)
	})

	t.Run("approves pending claims", func(t *testing.T) {
		s := NewInMemory()
		require.NoError(t, s.Create(ctx, testClaim("c1", base)))
		decided := base.Add(time.Hour)
		update := testClaim("c1", base)
		update.Status = models.StatusApproved
		update.DecidedAt = &decided
		require.NoError(t, s.SaveDecision(ctx, update))

		got, _ := s.Get(ctx, "c1")
		assert.Equal(t, models.StatusApproved, got.Status)
		assert.Equal(t, decided, *got.DecidedAt)
	})
}
