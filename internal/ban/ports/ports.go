// Package ports defines the interfaces the ban module depends on and exposes.
package ports

import (
	"context"

	"fraudgate/internal/ban/models"
)

// BanStore is the durable record of banned origins and identities. It is an
// exact-match oracle: callers pass normalized values. Entries are never
// modified or removed.
type BanStore interface {
	// IsBanned reports whether an entry exists for (kind, value).
	IsBanned(ctx context.Context, kind models.SubjectKind, value string) (bool, error)

	// Add records a ban. Adding an existing (kind, value) is a no-op.
	Add(ctx context.Context, entry *models.BanEntry) error
}

// BanLister is implemented by stores that can enumerate entries for operators.
type BanLister interface {
	List(ctx context.Context, kind models.SubjectKind) ([]*models.BanEntry, error)
}
