package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"fraudgate/internal/ban/models"
	dErrors "fraudgate/pkg/domain-errors"
)

const (
	pgCheckViolation   = "23514"
	pgInvalidTextRepr  = "22P02"
	pgNotNullViolation = "23502"
)

const (
	insertBanQuery      = `INSERT INTO bans (id, kind, value, reason, source, claim_id, created_by, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (kind, value) DO NOTHING`
	isBannedQuery       = `SELECT EXISTS (SELECT 1 FROM bans WHERE kind = $1 AND value = $2)`
	listBansByKindQuery = `SELECT id, kind, value, reason, source, claim_id, created_by, created_at FROM bans WHERE kind = $1 ORDER BY created_at, value`
)

// PostgresStore persists bans in PostgreSQL. The (kind, value) unique
// constraint makes Add idempotent.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ban store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) IsBanned(ctx context.Context, kind models.SubjectKind, value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	var exists bool
	if err := s.db.QueryRowContext(ctx, isBannedQuery, string(kind), value).Scan(&exists); err != nil {
		return false, fmt.Errorf("check ban: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Add(ctx context.Context, entry *models.BanEntry) error {
	if entry == nil {
		return fmt.Errorf("ban entry is required")
	}
	_, err := s.db.ExecContext(ctx, insertBanQuery,
		entry.ID,
		string(entry.Kind),
		entry.Value,
		entry.Reason,
		string(entry.Source),
		nullString(entry.ClaimID),
		nullString(entry.CreatedBy),
		entry.CreatedAt,
	)
	if err != nil {
		return classify(fmt.Errorf("add ban: %w", err))
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, kind models.SubjectKind) ([]*models.BanEntry, error) {
	rows, err := s.db.QueryContext(ctx, listBansByKindQuery, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list bans: %w", err)
	}
	defer rows.Close()

	var entries []*models.BanEntry
	for rows.Next() {
		var (
			e                  models.BanEntry
			kindCol, sourceCol string
			claimID, createdBy sql.NullString
		)
		if err := rows.Scan(&e.ID, &kindCol, &e.Value, &e.Reason, &sourceCol, &claimID, &createdBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ban: %w", err)
		}
		e.Kind = models.SubjectKind(kindCol)
		e.Source = models.Source(sourceCol)
		e.ClaimID = claimID.String
		e.CreatedBy = createdBy.String
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bans: %w", err)
	}
	return entries, nil
}

// classify marks constraint failures as permanent so callers stop retrying.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCheckViolation, pgInvalidTextRepr, pgNotNullViolation:
			return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "ban entry rejected by store")
		}
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
