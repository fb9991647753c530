// Package service runs the verification pipeline for one submitted claim:
// identity pre-check, classification, automated escalation, artifact
// persistence, durable claim write, then operator notification.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"fraudgate/internal/audit"
	claimmodels "fraudgate/internal/claim/models"
	"fraudgate/internal/verification/metrics"
	"fraudgate/internal/verification/models"
	"fraudgate/internal/verification/ports"
	dErrors "fraudgate/pkg/domain-errors"
	"fraudgate/pkg/platform/device"
	"fraudgate/pkg/platform/privacy"
	"fraudgate/pkg/requestcontext"
	"fraudgate/pkg/subject"
)

const (
	DefaultFraudThreshold    = 0.8
	DefaultClassifierTimeout = 15 * time.Second
	DefaultMaxArtifactBytes  = 5 << 20
	defaultNotifyTimeout     = 10 * time.Second

	// AutomatedBanReason is recorded on bans raised by the classifier.
	AutomatedBanReason = "classifier detected a fake or non-matching payment proof"
	// ReasonVerificationFailed is shown to a submitter whose proof was rejected.
	ReasonVerificationFailed = "automated verification detected a fake or non-matching payment proof"
	// ReasonAccountBanned is shown to a submitter whose identity is banned.
	ReasonAccountBanned = "account banned"
)

// ErrIdentityBanned rejects a submission from a banned identity.
var ErrIdentityBanned = dErrors.New(dErrors.CodeForbidden, ReasonAccountBanned)

type Service struct {
	claims            ClaimCreator
	classifier        ports.Classifier
	artifacts         ports.ArtifactStore
	escalator         Escalator
	hasher            OriginHasher
	identities        IdentityChecker
	notifier          ports.Notifier
	auditPublisher    AuditPublisher
	redirect          string
	threshold         float64
	classifierTimeout time.Duration
	notifyTimeout     time.Duration
	maxArtifactBytes  int64
	logger            *slog.Logger
	metrics           *metrics.Metrics
	tracer            trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithIdentityChecker enables the banned-identity pre-check.
func WithIdentityChecker(checker IdentityChecker) Option {
	return func(s *Service) {
		s.identities = checker
	}
}

func WithNotifier(notifier ports.Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithFraudThreshold sets the confidence above which a non-authentic verdict
// is escalated without human review. Values outside (0,1] are ignored.
func WithFraudThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold > 0 && threshold <= 1 {
			s.threshold = threshold
		}
	}
}

func WithClassifierTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.classifierTimeout = d
		}
	}
}

func WithMaxArtifactBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxArtifactBytes = n
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

func New(
	claims ClaimCreator,
	classifier ports.Classifier,
	artifacts ports.ArtifactStore,
	escalator Escalator,
	hasher OriginHasher,
	redirect string,
	opts ...Option,
) (*Service, error) {
	if claims == nil {
		return nil, fmt.Errorf("claim store is required")
	}
	if classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if artifacts == nil {
		return nil, fmt.Errorf("artifact store is required")
	}
	if escalator == nil {
		return nil, fmt.Errorf("escalator is required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("origin hasher is required")
	}
	if redirect == "" {
		return nil, fmt.Errorf("redirect url is required")
	}
	s := &Service{
		claims:            claims,
		classifier:        classifier,
		artifacts:         artifacts,
		escalator:         escalator,
		hasher:            hasher,
		redirect:          redirect,
		threshold:         DefaultFraudThreshold,
		classifierTimeout: DefaultClassifierTimeout,
		notifyTimeout:     defaultNotifyTimeout,
		maxArtifactBytes:  DefaultMaxArtifactBytes,
		logger:            slog.Default(),
		tracer:            otel.Tracer("fraudgate/verification"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Redirect returns the URL rejected submitters are sent to.
func (s *Service) Redirect() string {
	return s.redirect
}

// Submit runs the pipeline. Stages run strictly in order and a later stage
// never starts when an earlier one aborted the submission.
//
// A banned identity returns ErrIdentityBanned. A high-confidence fraud verdict
// is escalated and returns a denied Result with no artifact stored. Artifact
// or claim persistence failures are retryable (CodeUnavailable).
func (s *Service) Submit(ctx context.Context, sub *models.Submission) (*models.Result, error) {
	ctx, span := s.tracer.Start(ctx, "verification.Submit")
	defer span.End()

	if sub == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "submission is required")
	}
	if err := sub.Validate(s.maxArtifactBytes); err != nil {
		s.observeSubmission("invalid")
		return nil, err
	}

	origin := subject.Origin(sub.Origin)
	identity := subject.Identity(sub.Identity)

	if err := s.precheckIdentity(ctx, identity, origin); err != nil {
		s.observeSubmission("identity_banned")
		span.SetStatus(codes.Error, "identity banned")
		return nil, err
	}

	claim, err := claimmodels.NewClaim(s.hasher.Hash(origin), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	claim.Origin = origin
	claim.Identity = identity
	claim.ExpectedAmount = sub.ExpectedAmount
	claim.ContactInfo = sub.ContactInfo
	if claim.ContactInfo == "" {
		claim.ContactInfo = models.DefaultContactInfo
	}
	claim.MimeType = sub.MimeType
	claim.ClientPlatform = device.ParseUserAgent(sub.UserAgent)
	span.SetAttributes(attribute.String("claim.id", claim.ID))

	claim.Verdict = s.classify(ctx, sub)

	if claim.Verdict.IsFraud(s.threshold) {
		return s.rejectFraud(ctx, claim), nil
	}

	ref, err := s.storeArtifact(ctx, claim, sub.Artifact)
	if err != nil {
		s.observeSubmission("artifact_failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "artifact persistence failed")
		return nil, err
	}
	claim.EvidenceRef = ref

	if err := s.createClaim(ctx, claim); err != nil {
		s.observeSubmission("claim_failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "claim persistence failed")
		return nil, err
	}

	audit.Log(ctx, s.logger, s.emitter(), audit.Event{
		Action:  audit.ActionClaimReceived,
		ClaimID: claim.ID,
		Actor:   identity,
	}, "ip_prefix", privacy.AnonymizeIP(origin))

	s.notify(ctx, claim)
	s.observeSubmission("accepted")

	return &models.Result{
		ClaimID: claim.ID,
		Status:  claim.Status,
	}, nil
}

// precheckIdentity fails open: a ban store error lets the submission through.
func (s *Service) precheckIdentity(ctx context.Context, identity, origin string) error {
	if identity == "" || s.identities == nil {
		return nil
	}
	start := time.Now()
	banned, err := s.identities.CheckIdentity(ctx, identity)
	s.observeStage("identity_check", start)
	if err != nil {
		s.logger.WarnContext(ctx, "identity pre-check failed, continuing", "error", err)
		return nil
	}
	if !banned {
		return nil
	}
	audit.Log(ctx, s.logger, s.emitter(), audit.Event{
		Action:      audit.ActionAccessDenied,
		SubjectKind: "identity",
		Subject:     identity,
		Reason:      ReasonAccountBanned,
	}, "stage", "submission", "ip_prefix", privacy.AnonymizeIP(origin))
	return ErrIdentityBanned
}

// classify never fails: a classifier error or timeout yields the neutral
// verdict, which always routes to human review.
func (s *Service) classify(ctx context.Context, sub *models.Submission) claimmodels.Verdict {
	ctx, span := s.tracer.Start(ctx, "verification.classify")
	defer span.End()

	start := time.Now()
	defer s.observeStage("classify", start)

	verdict, err := s.classifyWithTimeout(ctx, models.ClassifyInput{
		Artifact:       sub.Artifact,
		MimeType:       sub.MimeType,
		ExpectedAmount: sub.ExpectedAmount,
	})
	if err != nil {
		span.RecordError(err)
		if s.metrics != nil {
			s.metrics.IncClassifierResult("unavailable")
		}
		audit.Log(ctx, s.logger, s.emitter(), audit.Event{
			Action: audit.ActionClassifierFault,
			Reason: err.Error(),
		})
		return claimmodels.UnavailableVerdict()
	}

	verdict = verdict.Clamp()
	span.SetAttributes(
		attribute.Bool("verdict.authentic", verdict.IsAuthentic),
		attribute.Float64("verdict.confidence", verdict.Confidence),
	)
	if s.metrics != nil {
		s.metrics.IncClassifierResult(verdictLabel(verdict, s.threshold))
	}
	return verdict
}

// classifyWithTimeout enforces the deadline even when the classifier ignores
// its context.
func (s *Service) classifyWithTimeout(ctx context.Context, input models.ClassifyInput) (claimmodels.Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, s.classifierTimeout)
	defer cancel()

	type result struct {
		verdict claimmodels.Verdict
		err     error
	}
	done := make(chan result, 1)
	go func() {
		v, err := s.classifier.Classify(ctx, input)
		done <- result{verdict: v, err: err}
	}()

	select {
	case r := <-done:
		return r.verdict, r.err
	case <-ctx.Done():
		return claimmodels.Verdict{}, fmt.Errorf("classifier: %w", ctx.Err())
	}
}

// rejectFraud escalates synchronously. The submission is denied even when a
// ban write failed; escalation already logged and audited the failure.
func (s *Service) rejectFraud(ctx context.Context, claim *claimmodels.Claim) *models.Result {
	ctx, span := s.tracer.Start(ctx, "verification.escalate")
	defer span.End()

	start := time.Now()
	err := s.escalator.Escalate(ctx, claim, claimmodels.DecisionFraud, AutomatedBanReason)
	s.observeStage("escalate", start)
	if err != nil {
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "automated escalation incomplete",
			"claim_id", claim.ID,
			"error", err,
		)
	}

	s.logger.InfoContext(ctx, "submission rejected as fraudulent",
		"claim_id", claim.ID,
		"confidence", claim.Verdict.Confidence,
	)
	s.observeSubmission("denied")

	return &models.Result{
		ClaimID:  claim.ID,
		Status:   claimmodels.StatusFraud,
		Denied:   true,
		Reason:   ReasonVerificationFailed,
		Redirect: s.redirect,
	}
}

func (s *Service) storeArtifact(ctx context.Context, claim *claimmodels.Claim, data []byte) (string, error) {
	ctx, span := s.tracer.Start(ctx, "verification.store_artifact")
	defer span.End()

	start := time.Now()
	ref, err := s.artifacts.Put(ctx, artifactKey(claim), data, claim.MimeType)
	s.observeStage("store_artifact", start)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to store artifact",
			"claim_id", claim.ID,
			"error", err,
		)
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to store screenshot, please retry")
	}
	return ref, nil
}

func (s *Service) createClaim(ctx context.Context, claim *claimmodels.Claim) error {
	ctx, span := s.tracer.Start(ctx, "verification.create_claim")
	defer span.End()

	start := time.Now()
	err := s.claims.Create(ctx, claim)
	s.observeStage("create_claim", start)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to save claim",
			"claim_id", claim.ID,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to save claim, please retry")
	}
	return nil
}

// notify is best effort and detached from the caller so a disconnecting
// client still produces an operator alert.
func (s *Service) notify(ctx context.Context, claim *claimmodels.Claim) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "verification.notify")
	defer span.End()

	start := time.Now()
	err := s.notifier.Send(ctx, FormatNotification(claim))
	s.observeStage("notify", start)
	if err != nil {
		span.RecordError(err)
		if s.metrics != nil {
			s.metrics.NotificationFailure.Inc()
		}
		s.logger.WarnContext(ctx, "operator notification failed",
			"claim_id", claim.ID,
			"error", err,
		)
	}
}

func (s *Service) observeStage(stage string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStage(stage, start)
	}
}

func (s *Service) observeSubmission(outcome string) {
	if s.metrics != nil {
		s.metrics.IncSubmission(outcome)
	}
}

func (s *Service) emitter() audit.Emitter {
	if s.auditPublisher == nil {
		return nil
	}
	return s.auditPublisher
}

func verdictLabel(v claimmodels.Verdict, threshold float64) string {
	switch {
	case v.IsFraud(threshold):
		return "fraud"
	case !v.IsAuthentic:
		return "suspicious"
	default:
		return "authentic"
	}
}

var artifactExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
}

// artifactKey groups artifacts by day so buckets stay browsable.
func artifactKey(claim *claimmodels.Claim) string {
	return fmt.Sprintf("claims/%s/%s%s",
		claim.CreatedAt.UTC().Format("2006/01/02"),
		claim.ID,
		artifactExtensions[claim.MimeType],
	)
}

// IsIdentityBanned reports whether err came from the identity pre-check.
func IsIdentityBanned(err error) bool {
	return errors.Is(err, ErrIdentityBanned)
}
