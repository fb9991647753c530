package classifier

import (
	"context"
	"errors"

	claimmodels "fraudgate/internal/claim/models"
	"fraudgate/internal/verification/models"
)

// ErrDisabled is returned by Disabled on every call.
var ErrDisabled = errors.New("classifier not configured")

// Disabled stands in when no model is configured. Every submission then
// receives the neutral verdict and goes to human review.
type Disabled struct{}

func (Disabled) Classify(context.Context, models.ClassifyInput) (claimmodels.Verdict, error) {
	return claimmodels.Verdict{}, ErrDisabled
}
