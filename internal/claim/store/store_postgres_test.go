package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudgate/internal/claim/models"
	"fraudgate/pkg/platform/sentinel"
)

var claimRowColumns = []string{
	"id", "origin_hash", "identity", "expected_amount", "contact_info", "evidence_ref", "mime_type",
	"client_platform", "is_authentic", "confidence", "verdict_reason", "status", "decision_reason",
	"decided_by", "created_at", "decided_at",
}

func claimRow(id string, at time.Time) []driver.Value {
	return []driver.Value{
		id, "hash", "buyer@example.com", 99.0, "Not Provided", "screenshots/x.png", "image/png",
		"iOS", true, 0.5, "classification unavailable", "pending_review", nil, nil, at, nil,
	}
}

func newMockClaimStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgres(db), mock
}

func TestPostgresStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("writes claim and origin in one transaction", func(t *testing.T) {
		s, mock := newMockClaimStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(insertClaimQuery)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(insertOriginQuery)).
			WithArgs("c1", "203.0.113.5").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.Create(ctx, testClaim("c1", base)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate id is a conflict", func(t *testing.T) {
		s, mock := newMockClaimStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(insertClaimQuery)).WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})
		mock.ExpectRollback()

		err := s.Create(ctx, testClaim("c1", base))
		assert.ErrorIs(t, err, sentinel.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("origin failure rolls back", func(t *testing.T) {
		s, mock := newMockClaimStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(insertClaimQuery)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(insertOriginQuery)).WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		require.Error(t, s.Create(ctx, testClaim("c1", base)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_SaveDecision(t *testing.T) {
	s, mock := newMockClaimStore(t)
	c := testClaim("c1", base)
	c.Origin = ""
	c.Status = models.StatusFraud

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(upsertDecisionQuery)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.SaveDecision(context.Background(), c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveDecisionKeptFraud(t *testing.T) {
	t.Run("approval refused by the fraud guard", func(t *testing.T) {
		s, mock := newMockClaimStore(t)
		c := testClaim("c1", base)
		c.Origin = ""
		c.Status = models.StatusApproved

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(upsertDecisionQuery)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := s.SaveDecision(context.Background(), c)
		assert.ErrorIs(t, err, sentinel.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fraud over fraud is not a conflict", func(t *testing.T) {
		s, mock := newMockClaimStore(t)
		c := testClaim("c1", base)
		c.Origin = ""
		c.Status = models.StatusFraud

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(upsertDecisionQuery)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		require.NoError(t, s.SaveDecision(context.Background(), c))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_Get(t *testing.T) {
	ctx := context.Background()
	claimID := "0b8a6f1e-2c55-4c1e-9d0a-6f1f0c8e7a11"

	t.Run("found with origin", func(t *testing.T) {
		s, mock := newMockClaimStore(t)
		row := append(claimRow(claimID, base), "203.0.113.5")
		mock.ExpectQuery(regexp.QuoteMeta(getClaimQuery)).
			WithArgs(claimID).
			WillReturnRows(sqlmock.NewRows(append(append([]string{}, claimRowColumns...), "origin")).AddRow(row...))

		got, err := s.Get(ctx, claimID)
		require.NoError(t, err)
		assert.Equal(t, "203.0.113.5", got.Origin)
		require.NotNil(t, got.ExpectedAmount)
		assert.Equal(t, 99.0, *got.ExpectedAmount)
		assert.Nil(t, got.DecidedAt)
		assert.Equal(t, models.StatusPendingReview, got.Status)
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockClaimStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(getClaimQuery)).
			WillReturnRows(sqlmock.NewRows(append(append([]string{}, claimRowColumns...), "origin")))

		_, err := s.Get(ctx, claimID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("malformed id never reaches the database", func(t *testing.T) {
		s, mock := newMockClaimStore(t)
		_, err := s.Get(ctx, "c1")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_List(t *testing.T) {
	t.Run("first page with status filter", func(t *testing.T) {
		s, mock := newMockClaimStore(t)
		mock.ExpectQuery(`SELECT .* FROM claims c WHERE c.status = ANY\(\$1\) ORDER BY c.created_at DESC, c.id DESC LIMIT \$2`).
			WithArgs(sqlmock.AnyArg(), 2).
			WillReturnRows(sqlmock.NewRows(claimRowColumns).
				AddRow(claimRow("c2", base.Add(time.Minute))...).
				AddRow(claimRow("c1", base)...))

		page, err := s.List(context.Background(), models.ListQuery{
			Limit:    2,
			Statuses: []models.Status{models.StatusPendingReview},
		})
		require.NoError(t, err)
		require.Len(t, page.Claims, 2)
		require.NotNil(t, page.Next)
		assert.Equal(t, "c1", page.Next.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cursor continues after last row", func(t *testing.T) {
		s, mock := newMockClaimStore(t)
		mock.ExpectQuery(`WHERE \(c.created_at, c.id\) < \(\$1, \$2\) ORDER BY`).
			WithArgs(base, "c1", 20).
			WillReturnRows(sqlmock.NewRows(claimRowColumns))

		page, err := s.List(context.Background(), models.ListQuery{After: &models.Cursor{CreatedAt: base, ID: "c1"}})
		require.NoError(t, err)
		assert.Empty(t, page.Claims)
		assert.Nil(t, page.Next)
	})
}
