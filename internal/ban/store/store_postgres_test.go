package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudgate/internal/ban/models"
	dErrors "fraudgate/pkg/domain-errors"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgres(db), mock
}

func TestPostgresStore_IsBanned(t *testing.T) {
	ctx := context.Background()

	t.Run("exists", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(isBannedQuery)).
			WithArgs("origin", "203.0.113.5").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		banned, err := store.IsBanned(ctx, models.KindOrigin, "203.0.113.5")
		require.NoError(t, err)
		assert.True(t, banned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty value short-circuits", func(t *testing.T) {
		store, mock := newMockStore(t)
		banned, err := store.IsBanned(ctx, models.KindOrigin, "")
		require.NoError(t, err)
		assert.False(t, banned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(isBannedQuery)).
			WillReturnError(errors.New("connection refused"))

		_, err := store.IsBanned(ctx, models.KindIdentity, "a@b.c")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "check ban")
	})
}

func TestPostgresStore_Add(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("inserts with conflict guard", func(t *testing.T) {
		store, mock := newMockStore(t)
		entry, err := models.NewBanEntry(models.KindIdentity, "a@b.c", "automated fraud", models.SourceAutomated, "", now)
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta(insertBanQuery)).
			WithArgs(entry.ID, "identity", "a@b.c", "automated fraud", "automated", sqlmock.AnyArg(), sqlmock.AnyArg(), now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Add(ctx, entry))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("constraint violation is permanent", func(t *testing.T) {
		store, mock := newMockStore(t)
		entry, err := models.NewBanEntry(models.KindIdentity, "a@b.c", "x", models.SourceManual, "", now)
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta(insertBanQuery)).
			WillReturnError(&pgconn.PgError{Code: pgCheckViolation})

		err = store.Add(ctx, entry)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("transient error passes through", func(t *testing.T) {
		store, mock := newMockStore(t)
		entry, err := models.NewBanEntry(models.KindOrigin, "203.0.113.5", "x", models.SourceManual, "", now)
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta(insertBanQuery)).
			WillReturnError(errors.New("timeout"))

		err = store.Add(ctx, entry)
		require.Error(t, err)
		assert.False(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestPostgresStore_List(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(listBansByKindQuery)).
		WithArgs("origin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "value", "reason", "source", "claim_id", "created_by", "created_at"}).
			AddRow("b1", "origin", "203.0.113.5", "automated fraud", "automated", "c1", nil, now))

	entries, err := store.List(context.Background(), models.KindOrigin)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.KindOrigin, entries[0].Kind)
	assert.Equal(t, models.SourceAutomated, entries[0].Source)
	assert.Equal(t, "c1", entries[0].ClaimID)
	assert.Empty(t, entries[0].CreatedBy)
}
