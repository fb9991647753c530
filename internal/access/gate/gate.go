// Package gate decides whether a request from an origin (and optionally an
// identity) may proceed. Lookups fail open: when the ban store cannot answer,
// the request is allowed and the outcome says so.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"fraudgate/internal/access/metrics"
	"fraudgate/internal/audit"
	banmodels "fraudgate/internal/ban/models"
	"fraudgate/pkg/platform/circuit"
	"fraudgate/pkg/platform/privacy"
	"fraudgate/pkg/subject"
)

const defaultLookupTimeout = 2 * time.Second

var errBreakerOpen = errors.New("ban store circuit open")

// BanChecker is the read side of the ban store.
type BanChecker interface {
	IsBanned(ctx context.Context, kind banmodels.SubjectKind, value string) (bool, error)
}

// OriginCache is the local positive-only cache of banned origins.
type OriginCache interface {
	IsKnownBanned(origin string) bool
	MarkBanned(origin string)
}

// AuditPublisher emits audit events for denials and degraded checks.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Request is what the gate needs to know about one incoming request.
type Request struct {
	Origin   string
	Identity string
	// Exempt skips the identity check (operator routes).
	Exempt bool
}

type Gate struct {
	store           BanChecker
	cache           OriginCache
	redirect        string
	originBreaker   *circuit.Breaker
	identityBreaker *circuit.Breaker
	lookups         singleflight.Group
	lookupTimeout   time.Duration
	logger          *slog.Logger
	metrics         *metrics.Metrics
	auditPublisher  AuditPublisher
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(g *Gate) {
		g.auditPublisher = publisher
	}
}

// WithLookupTimeout bounds a single ban store lookup.
func WithLookupTimeout(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.lookupTimeout = d
		}
	}
}

// WithBreakers replaces the per-kind circuit breakers. Origin and identity
// lookups each get their own so one failing path never opens the other.
func WithBreakers(origin, identity *circuit.Breaker) Option {
	return func(g *Gate) {
		if origin != nil {
			g.originBreaker = origin
		}
		if identity != nil {
			g.identityBreaker = identity
		}
	}
}

// New builds a gate. redirect is the URL denied clients are sent to.
func New(store BanChecker, cache OriginCache, redirect string, opts ...Option) (*Gate, error) {
	if store == nil {
		return nil, fmt.Errorf("ban store is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("origin cache is required")
	}
	if redirect == "" {
		return nil, fmt.Errorf("redirect url is required")
	}
	g := &Gate{
		store:           store,
		cache:           cache,
		redirect:        redirect,
		originBreaker:   circuit.New("ban-store-origin"),
		identityBreaker: circuit.New("ban-store-identity"),
		lookupTimeout:   defaultLookupTimeout,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Redirect returns the URL denied clients are sent to.
func (g *Gate) Redirect() string {
	return g.redirect
}

// Check evaluates a request:
//  1. a cached origin is denied without I/O;
//  2. otherwise the origin is looked up once; a hit is cached and denied;
//  3. a non-exempt identity is looked up; a hit is denied;
//  4. any lookup failure yields DegradedAllow unless another check denied.
//
// The two lookups are independent: a failure in one never skips the other.
func (g *Gate) Check(ctx context.Context, req Request) Outcome {
	origin := subject.Origin(req.Origin)
	identity := subject.Identity(req.Identity)

	if g.cache.IsKnownBanned(origin) {
		if g.metrics != nil {
			g.metrics.CacheHits.Inc()
		}
		return g.denied(ctx, ReasonOriginBanned, "cache", origin)
	}

	var warnings []string

	if origin != "" {
		banned, err := g.lookupOrigin(ctx, origin)
		switch {
		case err != nil:
			g.logger.ErrorContext(ctx, "origin ban check failed, allowing",
				"error", err,
				"ip_prefix", privacy.AnonymizeIP(origin),
			)
			warnings = append(warnings, "origin check unavailable")
		case banned:
			g.cache.MarkBanned(origin)
			return g.denied(ctx, ReasonOriginBanned, "store", origin)
		}
	}

	if identity != "" && !req.Exempt {
		banned, err := g.lookupIdentity(ctx, identity)
		switch {
		case err != nil:
			g.logger.ErrorContext(ctx, "identity ban check failed, allowing", "error", err)
			warnings = append(warnings, "identity check unavailable")
		case banned:
			return g.denied(ctx, ReasonAccountBanned, "store", origin)
		}
	}

	if len(warnings) > 0 {
		warning := strings.Join(warnings, "; ")
		if g.metrics != nil {
			g.metrics.ObserveOutcome(DegradedAllow.String(), warning)
		}
		audit.Log(ctx, g.logger, g.emitter(), audit.Event{
			Action: audit.ActionAccessDegraded,
			Reason: warning,
		})
		return degraded(warning)
	}

	if g.metrics != nil {
		g.metrics.ObserveOutcome(Allow.String(), "")
	}
	return allow()
}

// CheckIdentity runs only the identity lookup. The pipeline uses it as a
// pre-check on the claimed identity. A store failure is returned to the
// caller, which decides whether to fail open.
func (g *Gate) CheckIdentity(ctx context.Context, identity string) (bool, error) {
	identity = subject.Identity(identity)
	if identity == "" {
		return false, nil
	}
	return g.lookupIdentity(ctx, identity)
}

// lookupOrigin coalesces concurrent lookups of the same origin into one store
// query. Each caller gets the shared result.
func (g *Gate) lookupOrigin(ctx context.Context, origin string) (bool, error) {
	v, err, _ := g.lookups.Do(origin, func() (any, error) {
		// Shared by every waiter, so one caller's cancellation must not fail the rest.
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.lookupTimeout)
		defer cancel()
		return g.lookup(lookupCtx, g.originBreaker, banmodels.KindOrigin, origin)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// lookupIdentity runs detached from the caller like lookupOrigin: a client
// that hangs up mid-request must not count as a ban store failure.
func (g *Gate) lookupIdentity(ctx context.Context, identity string) (bool, error) {
	lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.lookupTimeout)
	defer cancel()
	return g.lookup(lookupCtx, g.identityBreaker, banmodels.KindIdentity, identity)
}

func (g *Gate) lookup(ctx context.Context, breaker *circuit.Breaker, kind banmodels.SubjectKind, value string) (bool, error) {
	if !breaker.Allow() {
		g.recordStoreError(kind)
		return false, errBreakerOpen
	}
	if g.metrics != nil {
		g.metrics.StoreLookups.WithLabelValues(string(kind)).Inc()
	}

	start := time.Now()
	banned, err := g.store.IsBanned(ctx, kind, value)
	if g.metrics != nil {
		g.metrics.LookupDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		g.recordStoreError(kind)
		if errors.Is(err, context.Canceled) {
			// Abandoned, not failed: says nothing about the store.
			return false, err
		}
		if _, change := breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "ban store circuit opened", "kind", string(kind))
			if g.metrics != nil {
				g.metrics.SetBreakerOpen(string(kind), true)
			}
		}
		return false, err
	}
	if _, change := breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "ban store circuit closed", "kind", string(kind))
		if g.metrics != nil {
			g.metrics.SetBreakerOpen(string(kind), false)
		}
	}
	return banned, nil
}

func (g *Gate) recordStoreError(kind banmodels.SubjectKind) {
	if g.metrics != nil {
		g.metrics.StoreErrors.WithLabelValues(string(kind)).Inc()
	}
}

func (g *Gate) denied(ctx context.Context, reason, source, origin string) Outcome {
	if g.metrics != nil {
		g.metrics.ObserveOutcome(Deny.String(), reason)
	}
	audit.Log(ctx, g.logger, g.emitter(), audit.Event{
		Action: audit.ActionAccessDenied,
		Reason: reason,
	}, "source", source, "ip_prefix", privacy.AnonymizeIP(origin))
	return deny(reason, g.redirect)
}

func (g *Gate) emitter() audit.Emitter {
	if g.auditPublisher == nil {
		return nil
	}
	return g.auditPublisher
}
