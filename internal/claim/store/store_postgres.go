package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"fraudgate/internal/claim/models"
	"fraudgate/pkg/platform/sentinel"
	txctx "fraudgate/pkg/platform/tx"
)

const pgUniqueViolation = "23505"

const claimColumns = `c.id, c.origin_hash, c.identity, c.expected_amount, c.contact_info, c.evidence_ref, c.mime_type, c.client_platform, c.is_authentic, c.confidence, c.verdict_reason, c.status, c.decision_reason, c.decided_by, c.created_at, c.decided_at`

const (
	insertClaimQuery = `INSERT INTO claims (id, origin_hash, identity, expected_amount, contact_info, evidence_ref, mime_type, client_platform, is_authentic, confidence, verdict_reason, status, decision_reason, decided_by, created_at, decided_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	upsertDecisionQuery = insertClaimQuery + `
ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, decision_reason = EXCLUDED.decision_reason, decided_by = EXCLUDED.decided_by, decided_at = EXCLUDED.decided_at
WHERE claims.status <> 'fraud'`
	insertOriginQuery = `INSERT INTO claim_origins (claim_id, origin) VALUES ($1, $2) ON CONFLICT (claim_id) DO NOTHING`
	getClaimQuery     = `SELECT ` + claimColumns + `, o.origin FROM claims c LEFT JOIN claim_origins o ON o.claim_id = c.id WHERE c.id = $1`
)

// PostgresStore persists claims in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed claim store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, claim *models.Claim) error {
	if claim == nil {
		return fmt.Errorf("claim is required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertClaimQuery, claimArgs(claim)...); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return fmt.Errorf("claim %s: %w", claim.ID, sentinel.ErrConflict)
			}
			return fmt.Errorf("insert claim: %w", err)
		}
		return insertOrigin(ctx, tx, claim)
	})
}

func (s *PostgresStore) SaveDecision(ctx context.Context, claim *models.Claim) error {
	if claim == nil {
		return fmt.Errorf("claim is required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, upsertDecisionQuery, claimArgs(claim)...)
		if err != nil {
			return fmt.Errorf("save claim decision: %w", err)
		}
		// Zero rows means the WHERE guard kept an existing fraud row. That is
		// only a conflict when the write tried to move the claim out of fraud.
		if claim.Status != models.StatusFraud {
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("save claim decision: %w", err)
			}
			if n == 0 {
				return fmt.Errorf("claim %s: %w", claim.ID, sentinel.ErrConflict)
			}
		}
		return insertOrigin(ctx, tx, claim)
	})
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Claim, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, sentinel.ErrNotFound
	}
	var origin sql.NullString
	claim, err := scanClaim(s.db.QueryRowContext(ctx, getClaimQuery, id), &origin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get claim: %w", err)
	}
	claim.Origin = origin.String
	return claim, nil
}

func (s *PostgresStore) List(ctx context.Context, query models.ListQuery) (*models.Page, error) {
	query = query.Normalize()

	var (
		where []string
		args  []any
	)
	if len(query.Statuses) > 0 {
		statuses := make([]string, len(query.Statuses))
		for i, st := range query.Statuses {
			statuses[i] = string(st)
		}
		args = append(args, pq.Array(statuses))
		where = append(where, fmt.Sprintf("c.status = ANY($%d)", len(args)))
	}
	if query.After != nil {
		args = append(args, query.After.CreatedAt, query.After.ID)
		where = append(where, fmt.Sprintf("(c.created_at, c.id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, query.Limit)

	stmt := `SELECT ` + claimColumns + ` FROM claims c`
	if len(where) > 0 {
		stmt += ` WHERE ` + strings.Join(where, " AND ")
	}
	stmt += fmt.Sprintf(` ORDER BY c.created_at DESC, c.id DESC LIMIT $%d`, len(args))

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	page := &models.Page{}
	for rows.Next() {
		claim, err := scanClaim(rows, nil)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		page.Claims = append(page.Claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	if len(page.Claims) == query.Limit {
		last := page.Claims[len(page.Claims)-1]
		page.Next = &models.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return page, nil
}

// withTx joins a transaction already on ctx, so a caller can group the claim
// write with its own statements.
func (s *PostgresStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return txctx.Run(ctx, s.db, func(_ context.Context, tx *sql.Tx) error {
		return fn(tx)
	})
}

func insertOrigin(ctx context.Context, tx *sql.Tx, claim *models.Claim) error {
	if claim.Origin == "" {
		return nil
	}
	if _, err := tx.ExecContext(ctx, insertOriginQuery, claim.ID, claim.Origin); err != nil {
		return fmt.Errorf("insert claim origin: %w", err)
	}
	return nil
}

func claimArgs(c *models.Claim) []any {
	return []any{
		c.ID,
		c.OriginHash,
		nullString(c.Identity),
		nullFloat(c.ExpectedAmount),
		c.ContactInfo,
		nullString(c.EvidenceRef),
		nullString(c.MimeType),
		nullString(c.ClientPlatform),
		c.Verdict.IsAuthentic,
		c.Verdict.Confidence,
		c.Verdict.Reason,
		string(c.Status),
		nullString(c.DecisionReason),
		nullString(c.DecidedBy),
		c.CreatedAt,
		nullTime(c.DecidedAt),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClaim(row scanner, origin *sql.NullString) (*models.Claim, error) {
	var (
		c                                                     models.Claim
		identity, evidenceRef, mimeType, platform, reason, by sql.NullString
		amount                                                sql.NullFloat64
		decidedAt                                             sql.NullTime
		status                                                string
	)
	dest := []any{
		&c.ID, &c.OriginHash, &identity, &amount, &c.ContactInfo, &evidenceRef, &mimeType, &platform,
		&c.Verdict.IsAuthentic, &c.Verdict.Confidence, &c.Verdict.Reason, &status, &reason, &by,
		&c.CreatedAt, &decidedAt,
	}
	if origin != nil {
		dest = append(dest, origin)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	c.Identity = identity.String
	c.EvidenceRef = evidenceRef.String
	c.MimeType = mimeType.String
	c.ClientPlatform = platform.String
	c.DecisionReason = reason.String
	c.DecidedBy = by.String
	c.Status = models.Status(status)
	if amount.Valid {
		v := amount.Float64
		c.ExpectedAmount = &v
	}
	if decidedAt.Valid {
		t := decidedAt.Time
		c.DecidedAt = &t
	}
	return &c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
