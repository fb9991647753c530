// Package ports defines the external collaborators of the verification
// pipeline.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Classifier,ArtifactStore,Notifier

import (
	"context"

	claimmodels "fraudgate/internal/claim/models"
	"fraudgate/internal/verification/models"
)

// Classifier judges whether an artifact is an authentic payment proof. The
// pipeline bounds every call with its own timeout.
type Classifier interface {
	Classify(ctx context.Context, input models.ClassifyInput) (claimmodels.Verdict, error)
}

// ArtifactStore persists raw evidence and returns a durable reference to it.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (string, error)
}

// Notifier delivers a short operator alert. Delivery is best effort.
type Notifier interface {
	Send(ctx context.Context, text string) error
}
