// Package ports defines the claim store contract shared by the pipeline,
// escalation and review surfaces.
package ports

import (
	"context"

	"fraudgate/internal/claim/models"
)

// ClaimStore persists claims. The raw origin is stored apart from the claim
// record and only returned by Get.
type ClaimStore interface {
	// Create inserts a new claim.
	Create(ctx context.Context, claim *models.Claim) error

	// Get returns a claim by ID, including its origin. Returns sentinel.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Claim, error)

	// List returns claims newest first.
	List(ctx context.Context, query models.ListQuery) (*models.Page, error)

	// SaveDecision upserts a decided claim. A claim already in Fraud keeps its
	// status and decision fields.
	SaveDecision(ctx context.Context, claim *models.Claim) error
}
