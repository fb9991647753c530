// Package escalation is the single path that turns a decision on a claim into
// ban records. Both the automated pipeline and human review call Escalate.
package escalation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fraudgate/internal/audit"
	"fraudgate/internal/ban/metrics"
	banmodels "fraudgate/internal/ban/models"
	claimmodels "fraudgate/internal/claim/models"
	dErrors "fraudgate/pkg/domain-errors"
	"fraudgate/pkg/platform/sentinel"
	"fraudgate/pkg/requestcontext"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 100 * time.Millisecond
	defaultTimeout       = 10 * time.Second

	// AutomatedActor is recorded when no operator is on the context.
	AutomatedActor = "classifier"
)

type Service struct {
	bans           BanStore
	claims         ClaimRecorder
	cache          OriginMarker
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	attempts       int
	backoff        time.Duration
	timeout        time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithOriginCache marks banned origins in the local access cache.
func WithOriginCache(cache OriginMarker) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithRetry sets how many times each ban write is attempted and the initial
// backoff, which doubles between attempts.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(s *Service) {
		if attempts > 0 {
			s.attempts = attempts
		}
		if backoff >= 0 {
			s.backoff = backoff
		}
	}
}

// WithTimeout bounds a whole escalation, including retries.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(bans BanStore, claims ClaimRecorder, opts ...Option) (*Service, error) {
	if bans == nil {
		return nil, fmt.Errorf("ban store is required")
	}
	if claims == nil {
		return nil, fmt.Errorf("claim recorder is required")
	}
	s := &Service{
		bans:     bans,
		claims:   claims,
		logger:   slog.Default(),
		attempts: defaultRetryAttempts,
		backoff:  defaultRetryBackoff,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Escalate applies a decision to a claim.
//
// Fraud bans the claim's origin and identity (each write retried on its own)
// and records the claim as Fraud. Legitimate records it as Approved. Fraud is
// absorbing: escalating Fraud again re-applies the bans, and Legitimate on a
// Fraud claim is a conflict.
//
// Escalation is detached from the caller's cancellation so a disconnecting
// client cannot leave a half-applied ban.
func (s *Service) Escalate(ctx context.Context, claim *claimmodels.Claim, decision claimmodels.Decision, reason string) error {
	if claim == nil {
		return dErrors.New(dErrors.CodeBadRequest, "claim is required")
	}
	if reason == "" {
		return dErrors.New(dErrors.CodeBadRequest, "reason is required")
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	switch decision {
	case claimmodels.DecisionFraud:
		return s.markFraud(ctx, claim, reason)
	case claimmodels.DecisionLegitimate:
		return s.approve(ctx, claim, reason)
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "unknown decision")
	}
}

func (s *Service) approve(ctx context.Context, claim *claimmodels.Claim, reason string) error {
	switch claim.Status {
	case claimmodels.StatusFraud:
		return dErrors.New(dErrors.CodeConflict, "claim is already marked fraudulent")
	case claimmodels.StatusApproved:
		return nil
	}

	source, actor := actorFrom(ctx)
	now := requestcontext.Now(ctx)
	before := *claim
	claim.Status = claimmodels.StatusApproved
	claim.DecidedAt = &now
	claim.DecisionReason = reason
	claim.DecidedBy = actor

	if err := s.claims.SaveDecision(ctx, claim); err != nil {
		*claim = before
		// A concurrent fraud decision landed after this copy was read.
		if errors.Is(err, sentinel.ErrConflict) {
			s.logger.WarnContext(ctx, "approval refused, claim already marked fraudulent",
				"claim_id", claim.ID,
			)
			return dErrors.New(dErrors.CodeConflict, "claim is already marked fraudulent")
		}
		s.logger.ErrorContext(ctx, "failed to record claim approval",
			"claim_id", claim.ID,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to record decision")
	}

	if s.metrics != nil {
		s.metrics.IncDecision(string(claimmodels.DecisionLegitimate), string(source))
	}
	audit.Log(ctx, s.logger, s.emitter(), audit.Event{
		Action:  audit.ActionClaimApproved,
		ClaimID: claim.ID,
		Actor:   actor,
		Reason:  reason,
	})
	return nil
}

func (s *Service) markFraud(ctx context.Context, claim *claimmodels.Claim, reason string) error {
	source, actor := actorFrom(ctx)
	now := requestcontext.Now(ctx)

	var errs []error
	if claim.Origin != "" {
		if err := s.ban(ctx, banmodels.KindOrigin, claim.Origin, reason, source, actor, claim, now); err != nil {
			errs = append(errs, err)
		} else if s.cache != nil {
			s.cache.MarkBanned(claim.Origin)
		}
	} else {
		s.logger.WarnContext(ctx, "claim has no origin, origin ban skipped", "claim_id", claim.ID)
	}
	if claim.Identity != "" {
		if err := s.ban(ctx, banmodels.KindIdentity, claim.Identity, reason, source, actor, claim, now); err != nil {
			errs = append(errs, err)
		}
	}

	if claim.Status != claimmodels.StatusFraud {
		claim.Status = claimmodels.StatusFraud
		claim.DecidedAt = &now
		claim.DecisionReason = reason
		claim.DecidedBy = actor
	}
	if err := s.claims.SaveDecision(ctx, claim); err != nil {
		s.logger.ErrorContext(ctx, "failed to record fraud decision",
			"claim_id", claim.ID,
			"error", err,
		)
		errs = append(errs, fmt.Errorf("record decision: %w", err))
	} else {
		if s.metrics != nil {
			s.metrics.IncDecision(string(claimmodels.DecisionFraud), string(source))
		}
		audit.Log(ctx, s.logger, s.emitter(), audit.Event{
			Action:  audit.ActionClaimFraud,
			ClaimID: claim.ID,
			Actor:   actor,
			Reason:  reason,
		}, "source", string(source))
	}

	if len(errs) > 0 {
		return dErrors.Wrap(errors.Join(errs...), dErrors.CodeUnavailable, "escalation incomplete, retry")
	}
	return nil
}

// ban writes one entry, retrying transient failures with doubling backoff.
// Other ban writes are unaffected by the outcome.
func (s *Service) ban(ctx context.Context, kind banmodels.SubjectKind, value, reason string, source banmodels.Source, actor string, claim *claimmodels.Claim, now time.Time) error {
	entry, err := banmodels.NewBanEntry(kind, value, reason, source, claim.ID, now)
	if err != nil {
		return fmt.Errorf("%s ban: %w", kind, err)
	}
	entry.CreatedBy = actor

	backoff := s.backoff
	for attempt := 1; ; attempt++ {
		err = s.bans.Add(ctx, entry)
		if err == nil {
			break
		}
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) || attempt >= s.attempts {
			break
		}
		s.logger.WarnContext(ctx, "ban write failed, retrying",
			"kind", string(kind),
			"claim_id", claim.ID,
			"attempt", attempt,
			"error", err,
		)
		if waitErr := sleep(ctx, backoff); waitErr != nil {
			err = errors.Join(err, waitErr)
			break
		}
		backoff *= 2
	}

	if err != nil {
		if s.metrics != nil {
			s.metrics.IncBanWriteFailure(string(kind))
		}
		audit.Log(ctx, s.logger, s.emitter(), audit.Event{
			Action:      audit.ActionBanWriteFailed,
			SubjectKind: string(kind),
			Subject:     auditSubject(kind, value, claim),
			ClaimID:     claim.ID,
			Actor:       actor,
			Reason:      err.Error(),
		})
		return fmt.Errorf("%s ban: %w", kind, err)
	}

	if s.metrics != nil {
		s.metrics.IncBanCreated(string(kind), string(source))
	}
	action := audit.ActionOriginBanned
	if kind == banmodels.KindIdentity {
		action = audit.ActionIdentityBanned
	}
	audit.Log(ctx, s.logger, s.emitter(), audit.Event{
		Action:      action,
		SubjectKind: string(kind),
		Subject:     auditSubject(kind, value, claim),
		ClaimID:     claim.ID,
		Actor:       actor,
		Reason:      reason,
	}, "source", string(source))
	return nil
}

// emitter avoids handing audit.Log a typed nil interface.
func (s *Service) emitter() audit.Emitter {
	if s.auditPublisher == nil {
		return nil
	}
	return s.auditPublisher
}

// auditSubject keeps raw origins out of the audit stream.
func auditSubject(kind banmodels.SubjectKind, value string, claim *claimmodels.Claim) string {
	if kind == banmodels.KindOrigin {
		return claim.OriginHash
	}
	return value
}

func actorFrom(ctx context.Context) (banmodels.Source, string) {
	if admin := requestcontext.Admin(ctx); admin != "" {
		return banmodels.SourceManual, admin
	}
	return banmodels.SourceAutomated, AutomatedActor
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
