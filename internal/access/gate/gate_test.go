package gate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fraudgate/internal/access/cache"
	"fraudgate/internal/audit"
	banmodels "fraudgate/internal/ban/models"
	"fraudgate/pkg/platform/circuit"
)

// fakeStore answers from a fixed ban list and can fail per kind.
type fakeStore struct {
	mu      sync.Mutex
	banned  map[banmodels.SubjectKind]map[string]bool
	errs    map[banmodels.SubjectKind]error
	calls   map[banmodels.SubjectKind]*atomic.Int32
	release chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		banned: map[banmodels.SubjectKind]map[string]bool{
			banmodels.KindOrigin:   {},
			banmodels.KindIdentity: {},
		},
		errs: map[banmodels.SubjectKind]error{},
		calls: map[banmodels.SubjectKind]*atomic.Int32{
			banmodels.KindOrigin:   {},
			banmodels.KindIdentity: {},
		},
	}
}

func (f *fakeStore) ban(kind banmodels.SubjectKind, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banned[kind][value] = true
}

func (f *fakeStore) fail(kind banmodels.SubjectKind, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[kind] = err
}

func (f *fakeStore) IsBanned(_ context.Context, kind banmodels.SubjectKind, value string) (bool, error) {
	f.calls[kind].Add(1)
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[kind]; err != nil {
		return false, err
	}
	return f.banned[kind][value], nil
}

func (f *fakeStore) count(kind banmodels.SubjectKind) int {
	return int(f.calls[kind].Load())
}

// =============================================================================
// Access Gate Test Suite
// =============================================================================
// Justification for unit tests: the gate is the fail-open decision point on
// every request. Tests cover cache short-circuiting, store lookups, isolation
// between the origin and identity checks, breaker fast-fail, and lookup
// coalescing.

type GateSuite struct {
	suite.Suite
	store  *fakeStore
	cache  *cache.Cache
	buffer *audit.RingBuffer
	gate   *Gate
	ctx    context.Context
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.store = newFakeStore()
	var err error
	s.cache, err = cache.New(100, time.Hour)
	s.Require().NoError(err)
	s.buffer = audit.NewRingBuffer(100)
	s.gate, err = New(s.store, s.cache, "https://www.google.com",
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(audit.NewPublisher(s.buffer)),
	)
	s.Require().NoError(err)
	s.ctx = context.Background()
}

func (s *GateSuite) TestNew() {
	_, err := New(nil, s.cache, "https://x")
	s.ErrorContains(err, "ban store is required")

	_, err = New(s.store, nil, "https://x")
	s.ErrorContains(err, "origin cache is required")

	_, err = New(s.store, s.cache, "")
	s.ErrorContains(err, "redirect url is required")
}

func (s *GateSuite) TestCachedOriginDeniedWithoutIO() {
	s.cache.MarkBanned("203.0.113.5")

	out := s.gate.Check(s.ctx, Request{Origin: "203.0.113.5", Identity: "a@b.c"})

	s.Equal(Deny, out.Decision)
	s.Equal(ReasonOriginBanned, out.Reason)
	s.Equal("https://www.google.com", out.Redirect)
	s.Zero(s.store.count(banmodels.KindOrigin))
	s.Zero(s.store.count(banmodels.KindIdentity))
}

func (s *GateSuite) TestStoreHitIsCachedAndDenied() {
	s.store.ban(banmodels.KindOrigin, "203.0.113.5")

	out := s.gate.Check(s.ctx, Request{Origin: "203.0.113.5"})
	s.Equal(Deny, out.Decision)
	s.True(s.cache.IsKnownBanned("203.0.113.5"))

	out = s.gate.Check(s.ctx, Request{Origin: "203.0.113.5"})
	s.Equal(Deny, out.Decision)
	s.Equal(1, s.store.count(banmodels.KindOrigin), "second request served from cache")

	events := s.buffer.DequeueBatch(10)
	s.Require().Len(events, 2)
	s.Equal(audit.ActionAccessDenied, events[0].Action)
}

func (s *GateSuite) TestCleanOriginAllowedAndNotCached() {
	out := s.gate.Check(s.ctx, Request{Origin: "198.51.100.7"})
	s.Equal(Allow, out.Decision)
	s.True(out.Allowed())
	s.False(s.cache.IsKnownBanned("198.51.100.7"))
	s.Equal(0, s.cache.Len())
}

func (s *GateSuite) TestOriginIsNormalizedBeforeLookup() {
	s.store.ban(banmodels.KindOrigin, "203.0.113.5")
	out := s.gate.Check(s.ctx, Request{Origin: " ::ffff:203.0.113.5 "})
	s.Equal(Deny, out.Decision)
}

func (s *GateSuite) TestUnparseableOriginIsNeverLookedUp() {
	out := s.gate.Check(s.ctx, Request{Origin: "unknown"})
	s.Equal(Allow, out.Decision)
	s.Zero(s.store.count(banmodels.KindOrigin))
}

func (s *GateSuite) TestBannedIdentityDenied() {
	s.store.ban(banmodels.KindIdentity, "fraud@example.com")

	out := s.gate.Check(s.ctx, Request{Origin: "198.51.100.7", Identity: "  FRAUD@example.com"})

	s.Equal(Deny, out.Decision)
	s.Equal(ReasonAccountBanned, out.Reason)
	s.False(s.cache.IsKnownBanned("198.51.100.7"), "identity bans do not taint the origin")
}

func (s *GateSuite) TestExemptRequestSkipsIdentity() {
	s.store.ban(banmodels.KindIdentity, "fraud@example.com")

	out := s.gate.Check(s.ctx, Request{Origin: "198.51.100.7", Identity: "fraud@example.com", Exempt: true})

	s.Equal(Allow, out.Decision)
	s.Zero(s.store.count(banmodels.KindIdentity))
}

func (s *GateSuite) TestStoreFailureFailsOpen() {
	s.store.fail(banmodels.KindOrigin, errors.New("connection refused"))

	out := s.gate.Check(s.ctx, Request{Origin: "203.0.113.5"})

	s.Equal(DegradedAllow, out.Decision)
	s.True(out.Allowed())
	s.Contains(out.Warning, "origin check unavailable")
	s.False(s.cache.IsKnownBanned("203.0.113.5"))
}

func (s *GateSuite) TestOriginFailureStillChecksIdentity() {
	s.store.fail(banmodels.KindOrigin, errors.New("timeout"))
	s.store.ban(banmodels.KindIdentity, "fraud@example.com")

	out := s.gate.Check(s.ctx, Request{Origin: "203.0.113.5", Identity: "fraud@example.com"})

	s.Equal(Deny, out.Decision)
	s.Equal(ReasonAccountBanned, out.Reason)
}

func (s *GateSuite) TestIdentityFailureDoesNotMaskOriginResult() {
	s.store.fail(banmodels.KindIdentity, errors.New("timeout"))

	out := s.gate.Check(s.ctx, Request{Origin: "198.51.100.7", Identity: "a@b.c"})
	s.Equal(DegradedAllow, out.Decision)
	s.Equal("identity check unavailable", out.Warning)

	s.store.ban(banmodels.KindOrigin, "203.0.113.5")
	out = s.gate.Check(s.ctx, Request{Origin: "203.0.113.5", Identity: "a@b.c"})
	s.Equal(Deny, out.Decision)
	s.Equal(ReasonOriginBanned, out.Reason)
}

func (s *GateSuite) TestOpenBreakerSkipsStore() {
	now := time.Now()
	clock := func() time.Time { return now }
	originBreaker := circuit.New("origin", circuit.WithFailureThreshold(2), circuit.WithClock(clock))
	identityBreaker := circuit.New("identity", circuit.WithFailureThreshold(2), circuit.WithClock(clock))
	g, err := New(s.store, s.cache, "https://www.google.com",
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithBreakers(originBreaker, identityBreaker),
	)
	s.Require().NoError(err)
	s.store.fail(banmodels.KindOrigin, errors.New("down"))

	g.Check(s.ctx, Request{Origin: "203.0.113.5"})
	g.Check(s.ctx, Request{Origin: "203.0.113.5"})
	s.True(originBreaker.IsOpen())

	out := g.Check(s.ctx, Request{Origin: "203.0.113.5", Identity: "a@b.c"})
	s.Equal(DegradedAllow, out.Decision)
	s.Equal(2, s.store.count(banmodels.KindOrigin), "open breaker fails fast")
	s.Equal(1, s.store.count(banmodels.KindIdentity), "identity path has its own breaker")
	s.False(identityBreaker.IsOpen())
}

func (s *GateSuite) TestConcurrentLookupsAreCoalesced() {
	s.store.release = make(chan struct{})
	s.store.ban(banmodels.KindOrigin, "203.0.113.5")

	const callers = 10
	var wg sync.WaitGroup
	outcomes := make([]Outcome, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = s.gate.Check(s.ctx, Request{Origin: "203.0.113.5"})
		}(i)
	}

	s.Eventually(func() bool { return s.store.count(banmodels.KindOrigin) >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(s.store.release)
	wg.Wait()

	s.LessOrEqual(s.store.count(banmodels.KindOrigin), callers)
	s.Less(s.store.count(banmodels.KindOrigin), callers/2+1)
	for _, out := range outcomes {
		s.Equal(Deny, out.Decision)
	}
}

func (s *GateSuite) TestCheckIdentity() {
	s.store.ban(banmodels.KindIdentity, "fraud@example.com")

	banned, err := s.gate.CheckIdentity(s.ctx, "Fraud@Example.com")
	s.Require().NoError(err)
	s.True(banned)

	banned, err = s.gate.CheckIdentity(s.ctx, "   ")
	s.Require().NoError(err)
	s.False(banned)
	s.Equal(1, s.store.count(banmodels.KindIdentity))

	s.store.fail(banmodels.KindIdentity, errors.New("down"))
	_, err = s.gate.CheckIdentity(s.ctx, "x@y.z")
	s.Error(err)
}

func (s *GateSuite) TestDecisionString() {
	s.Equal("allow", Allow.String())
	s.Equal("deny", Deny.String())
	s.Equal("degraded_allow", DegradedAllow.String())
}

// slowStore answers after a delay and honors context cancellation, like a
// real network client.
type slowStore struct {
	delay  time.Duration
	banned map[string]bool
}

func (st *slowStore) IsBanned(ctx context.Context, _ banmodels.SubjectKind, value string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(st.delay):
		return st.banned[value], nil
	}
}

func (s *GateSuite) TestClientAbortsDoNotOpenIdentityBreaker() {
	store := &slowStore{delay: 20 * time.Millisecond, banned: map[string]bool{"banned@example.com": true}}
	identityBreaker := circuit.New("identity", circuit.WithFailureThreshold(2))
	g, err := New(store, s.cache, "https://www.google.com",
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithBreakers(nil, identityBreaker),
	)
	s.Require().NoError(err)

	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithTimeout(s.ctx, time.Millisecond)
		g.Check(ctx, Request{Identity: "someone@example.com"})
		_, _ = g.CheckIdentity(ctx, "someone@example.com")
		cancel()
	}
	s.False(identityBreaker.IsOpen(), "client deadlines are not store failures")

	out := g.Check(s.ctx, Request{Identity: "banned@example.com"})
	s.Equal(Deny, out.Decision)
	s.Equal(ReasonAccountBanned, out.Reason)
}

func (s *GateSuite) TestCanceledLookupIsNotCountedAsFailure() {
	identityBreaker := circuit.New("identity", circuit.WithFailureThreshold(1))
	g, err := New(s.store, s.cache, "https://www.google.com",
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithBreakers(nil, identityBreaker),
	)
	s.Require().NoError(err)
	s.store.fail(banmodels.KindIdentity, context.Canceled)

	out := g.Check(s.ctx, Request{Identity: "a@b.c"})
	s.Equal(DegradedAllow, out.Decision)
	s.False(identityBreaker.IsOpen())

	s.store.fail(banmodels.KindIdentity, errors.New("connection refused"))
	g.Check(s.ctx, Request{Identity: "a@b.c"})
	s.True(identityBreaker.IsOpen(), "real store errors still trip the breaker")
}
