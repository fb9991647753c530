package escalation

import (
	"context"

	"fraudgate/internal/audit"
	banmodels "fraudgate/internal/ban/models"
	claimmodels "fraudgate/internal/claim/models"
)

// BanStore is the write side of the ban record.
type BanStore interface {
	Add(ctx context.Context, entry *banmodels.BanEntry) error
}

// ClaimRecorder persists a claim's decision. Implementations insert the claim
// when it does not exist yet and never move a claim out of Fraud: such a write
// returns sentinel.ErrConflict.
type ClaimRecorder interface {
	SaveDecision(ctx context.Context, claim *claimmodels.Claim) error
}

// OriginMarker is the local access cache; marking lets this process deny a
// freshly banned origin without another store round trip.
type OriginMarker interface {
	MarkBanned(origin string)
}

// AuditPublisher emits audit events for ban and decision changes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}
