package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	claimmodels "fraudgate/internal/claim/models"
	"fraudgate/internal/verification/models"
	"fraudgate/internal/verification/service"
	dErrors "fraudgate/pkg/domain-errors"
	"fraudgate/pkg/testutil"
)

type stubPipeline struct {
	got    *models.Submission
	result *models.Result
	err    error
}

func (p *stubPipeline) Submit(_ context.Context, sub *models.Submission) (*models.Result, error) {
	p.got = sub
	return p.result, p.err
}

func (p *stubPipeline) Redirect() string { return "https://www.google.com" }

type stubReviewer struct {
	query   claimmodels.ListQuery
	page    *claimmodels.Page
	decided claimmodels.Decision
	claimID string
	claim   *claimmodels.Claim
	err     error
}

func (r *stubReviewer) List(_ context.Context, q claimmodels.ListQuery) (*claimmodels.Page, error) {
	r.query = q
	return r.page, r.err
}

func (r *stubReviewer) Decide(_ context.Context, id string, d claimmodels.Decision, _ string) (*claimmodels.Claim, error) {
	r.claimID, r.decided = id, d
	return r.claim, r.err
}

// =============================================================================
// Claim Handler Test Suite
// =============================================================================
// Justification for unit tests: form parsing rules (amount sentinels, identity
// fallback, MIME sniffing) and the 403 body shapes are HTTP-only contracts.

type HandlerSuite struct {
	suite.Suite
	pipeline *stubPipeline
	reviewer *stubReviewer
	router   chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.pipeline = &stubPipeline{result: &models.Result{ClaimID: "c-1", Status: claimmodels.StatusPendingReview}}
	s.reviewer = &stubReviewer{}
	h := New(s.pipeline, s.reviewer, 1024, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
	h.RegisterAdmin(s.router)
}

func (s *HandlerSuite) upload(fields map[string]string, file *testutil.FilePart) *http.Request {
	req := testutil.NewMultipartRequest(s.T(), http.MethodPost, "/api/orders", fields, file)
	req = testutil.WithClient(req, "203.0.113.5", "curl/8.0")
	return testutil.WithIdentity(req, "header@example.com")
}

func png() *testutil.FilePart {
	return &testutil.FilePart{Field: "screenshot", Filename: "proof.png", ContentType: "image/png", Data: []byte("png-bytes")}
}

func (s *HandlerSuite) TestSubmitAccepted() {
	rr := testutil.DoRequest(s.router, s.upload(map[string]string{
		"userEmail":      "buyer@example.com",
		"expectedAmount": "99.00",
		"contactInfo":    "@buyer",
	}, png()))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	body := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
	s.Equal("submission received", (*body)["message"])
	s.Equal("c-1", (*body)["claim_id"])
	s.Equal("pending_review", (*body)["status"])
	s.NotContains(*body, "verdict")

	got := s.pipeline.got
	s.Equal("203.0.113.5", got.Origin)
	s.Equal("buyer@example.com", got.Identity)
	s.Equal("image/png", got.MimeType)
	s.Equal([]byte("png-bytes"), got.Artifact)
	s.Require().NotNil(got.ExpectedAmount)
	s.Equal(99.0, *got.ExpectedAmount)
	s.Equal("@buyer", got.ContactInfo)
	s.Equal("curl/8.0", got.UserAgent)
}

func (s *HandlerSuite) TestSubmitFallsBackToHeaderIdentity() {
	testutil.DoRequest(s.router, s.upload(map[string]string{"expectedAmount": "none"}, png()))
	s.Equal("header@example.com", s.pipeline.got.Identity)
	s.Nil(s.pipeline.got.ExpectedAmount)
}

func (s *HandlerSuite) TestSubmitSniffsMissingContentType() {
	file := png()
	file.ContentType = ""
	file.Data = []byte("\x89PNG\r\n\x1a\n0000")
	testutil.DoRequest(s.router, s.upload(nil, file))
	s.Equal("image/png", s.pipeline.got.MimeType)
}

func (s *HandlerSuite) TestSubmitValidation() {
	s.Run("missing screenshot", func() {
		rr := testutil.DoRequest(s.router, s.upload(map[string]string{"userEmail": "a@b.c"}, nil))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		testutil.AssertErrorCode(s.T(), rr, "validation_error")
	})

	s.Run("unparseable amount", func() {
		rr := testutil.DoRequest(s.router, s.upload(map[string]string{"expectedAmount": "ninety"}, png()))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	for _, amount := range []string{"NaN", "Inf", "-Infinity"} {
		s.Run("non-finite amount "+amount, func() {
			s.pipeline.got = nil
			rr := testutil.DoRequest(s.router, s.upload(map[string]string{"expectedAmount": amount}, png()))
			testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
			testutil.AssertErrorCode(s.T(), rr, "validation_error")
			s.Nil(s.pipeline.got, "pipeline must not see a non-finite amount")
		})
	}

	s.Run("not multipart", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/orders", map[string]string{"x": "y"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		testutil.AssertErrorCode(s.T(), rr, "bad_request")
	})

	s.Run("oversized upload", func() {
		file := png()
		file.Data = []byte(strings.Repeat("x", 3<<20))
		rr := testutil.DoRequest(s.router, s.upload(nil, file))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *HandlerSuite) TestSubmitBannedIdentity() {
	s.pipeline.err = service.ErrIdentityBanned

	rr := testutil.DoRequest(s.router, s.upload(nil, png()))

	testutil.AssertDenied(s.T(), rr, "access_denied", "account banned")
}

func (s *HandlerSuite) TestSubmitDeniedAsFraud() {
	s.pipeline.result = &models.Result{
		ClaimID:  "c-1",
		Status:   claimmodels.StatusFraud,
		Denied:   true,
		Reason:   service.ReasonVerificationFailed,
		Redirect: "https://www.google.com",
	}

	rr := testutil.DoRequest(s.router, s.upload(nil, png()))

	testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
	body := testutil.UnmarshalResponse[DeniedResponse](s.T(), rr)
	s.Equal("verification_failed", body.Error)
	s.Equal("https://www.google.com", body.Redirect)
}

func (s *HandlerSuite) TestSubmitRetryableFailure() {
	s.pipeline.err = dErrors.New(dErrors.CodeUnavailable, "failed to store screenshot, please retry")

	rr := testutil.DoRequest(s.router, s.upload(nil, png()))

	testutil.AssertStatus(s.T(), rr, http.StatusServiceUnavailable)
	s.Equal("5", rr.Header().Get("Retry-After"))
}

func (s *HandlerSuite) TestListClaims() {
	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	s.reviewer.page = &claimmodels.Page{
		Claims: []*claimmodels.Claim{{ID: "c-2", OriginHash: "h", Origin: "203.0.113.5", Status: claimmodels.StatusPendingReview, CreatedAt: created}},
		Next:   &claimmodels.Cursor{CreatedAt: created, ID: "c-2"},
	}
	cursor := claimmodels.EncodeCursor(claimmodels.Cursor{CreatedAt: created.Add(time.Hour), ID: "c-9"})

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/admin/requests?limit=1&status=pending_review&cursor="+cursor))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Equal(1, s.reviewer.query.Limit)
	s.Equal([]claimmodels.Status{claimmodels.StatusPendingReview}, s.reviewer.query.Statuses)
	s.Require().NotNil(s.reviewer.query.After)
	s.Equal("c-9", s.reviewer.query.After.ID)

	raw := string(testutil.ReadBody(s.T(), rr))
	s.NotContains(raw, "203.0.113.5")
	s.Contains(raw, `"next_cursor":"`+claimmodels.EncodeCursor(*s.reviewer.page.Next)+`"`)
}

func (s *HandlerSuite) TestListClaimsBadInput() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/admin/requests?cursor=not-a-cursor!"))
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)

	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/admin/requests?limit=-1"))
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
}

func (s *HandlerSuite) TestDecision() {
	s.reviewer.claim = &claimmodels.Claim{ID: "c-1", Status: claimmodels.StatusFraud}

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/admin/decision",
		DecisionRequest{ClaimID: "c-1", Decision: "FAKE"}))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	testutil.AssertJSONContains(s.T(), rr, "status", "fraud")
	s.Equal("c-1", s.reviewer.claimID)
	s.Equal(claimmodels.DecisionFraud, s.reviewer.decided)
}

func (s *HandlerSuite) TestDecisionErrors() {
	s.Run("unknown decision", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/admin/decision",
			DecisionRequest{ClaimID: "c-1", Decision: "MAYBE"}))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("missing claim id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/admin/decision",
			DecisionRequest{Decision: "REAL"}))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("claim not found", func() {
		s.reviewer.err = dErrors.New(dErrors.CodeNotFound, "claim not found")
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/admin/decision",
			DecisionRequest{ClaimID: "nope", Decision: "REAL"}))
		testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
	})

	s.Run("fraud claim cannot be approved", func() {
		s.reviewer.err = dErrors.New(dErrors.CodeConflict, "claim is already marked fraudulent")
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/admin/decision",
			DecisionRequest{ClaimID: "c-1", Decision: "REAL"}))
		testutil.AssertStatus(s.T(), rr, http.StatusConflict)
	})
}
