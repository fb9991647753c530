package tx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM bans").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = Run(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			inner, ok := From(ctx)
			assert.True(t, ok)
			assert.Same(t, tx, inner)
			_, err := tx.ExecContext(ctx, "DELETE FROM bans")
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err = Run(ctx, db, func(context.Context, *sql.Tx) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("joins an ambient transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		outer, err := db.Begin()
		require.NoError(t, err)

		var joined *sql.Tx
		err = Run(WithTx(ctx, outer), db, func(_ context.Context, tx *sql.Tx) error {
			joined = tx
			return nil
		})
		require.NoError(t, err)
		assert.Same(t, outer, joined)
		// No second BEGIN and no COMMIT from Run.
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil tx leaves context untouched", func(t *testing.T) {
		_, ok := From(WithTx(ctx, nil))
		assert.False(t, ok)
	})
}
