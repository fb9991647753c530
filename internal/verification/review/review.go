// Package review is the human side of claim handling: listing claims for
// operators and applying their decisions through ban escalation.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	claimmodels "fraudgate/internal/claim/models"
	claimports "fraudgate/internal/claim/ports"
	dErrors "fraudgate/pkg/domain-errors"
	"fraudgate/pkg/platform/sentinel"
	"fraudgate/pkg/requestcontext"
)

// Reasons recorded for operator decisions.
const (
	ManualBanReason      = "manual admin ban"
	ManualApprovalReason = "manual admin approval"
)

// Escalator applies a decision to a claim.
type Escalator interface {
	Escalate(ctx context.Context, claim *claimmodels.Claim, decision claimmodels.Decision, reason string) error
}

type Service struct {
	claims    claimports.ClaimStore
	escalator Escalator
	logger    *slog.Logger
}

func New(claims claimports.ClaimStore, escalator Escalator, logger *slog.Logger) (*Service, error) {
	if claims == nil {
		return nil, fmt.Errorf("claim store is required")
	}
	if escalator == nil {
		return nil, fmt.Errorf("escalator is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{claims: claims, escalator: escalator, logger: logger}, nil
}

// List returns one page of claims, newest first.
func (s *Service) List(ctx context.Context, query claimmodels.ListQuery) (*claimmodels.Page, error) {
	for _, st := range query.Statuses {
		if !st.IsValid() {
			return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown status %q", st))
		}
	}
	page, err := s.claims.List(ctx, query.Normalize())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list claims")
	}
	return page, nil
}

// Decide loads the claim and escalates the operator's decision. The operator
// must already be on the context (requestcontext.WithAdmin) so bans are
// attributed to them.
func (s *Service) Decide(ctx context.Context, claimID string, decision claimmodels.Decision, reason string) (*claimmodels.Claim, error) {
	claimID = strings.TrimSpace(claimID)
	if claimID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "claim_id is required")
	}
	if requestcontext.Admin(ctx) == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "operator identity required")
	}
	if reason == "" {
		reason = ManualApprovalReason
		if decision == claimmodels.DecisionFraud {
			reason = ManualBanReason
		}
	}

	claim, err := s.claims.Get(ctx, claimID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "claim not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load claim")
	}

	if err := s.escalator.Escalate(ctx, claim, decision, reason); err != nil {
		s.logger.ErrorContext(ctx, "decision not fully applied",
			"claim_id", claim.ID,
			"decision", string(decision),
			"error", err,
		)
		return nil, err
	}
	return claim, nil
}
