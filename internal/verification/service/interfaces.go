package service

import (
	"context"

	"fraudgate/internal/audit"
	claimmodels "fraudgate/internal/claim/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks ClaimCreator,Escalator,IdentityChecker,OriginHasher,AuditPublisher

// ClaimCreator writes new PendingReview claims.
type ClaimCreator interface {
	Create(ctx context.Context, claim *claimmodels.Claim) error
}

// Escalator applies a fraud decision, banning the claim's origin and identity.
type Escalator interface {
	Escalate(ctx context.Context, claim *claimmodels.Claim, decision claimmodels.Decision, reason string) error
}

// IdentityChecker answers whether an identity is already banned.
type IdentityChecker interface {
	CheckIdentity(ctx context.Context, identity string) (bool, error)
}

// OriginHasher produces the one-way origin digest stored on claims.
type OriginHasher interface {
	Hash(origin string) string
}

// AuditPublisher emits audit events for pipeline decisions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}
