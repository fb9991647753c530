package containment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	SetOrigin(origin string)
	SetIdentity(identity string)
	SubmitClaim(amount string) error
	GET(path string, headers map[string]string) error
	POST(path string, body interface{}, headers map[string]string) error
	AdminHeaders() map[string]string
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers intake, lockout and review step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &containmentSteps{tc: tc}

	ctx.Step(`^a buyer from origin "([^"]*)"$`, steps.buyerFromOrigin)
	ctx.Step(`^a buyer from origin "([^"]*)" with identity "([^"]*)"$`, steps.buyerFromOriginWithIdentity)
	ctx.Step(`^the buyer submits a payment screenshot for "([^"]*)"$`, steps.submitScreenshot)
	ctx.Step(`^the claim should be pending review$`, steps.claimPendingReview)

	ctx.Step(`^an operator lists claims with status "([^"]*)"$`, steps.listClaims)
	ctx.Step(`^the list should contain the submitted claim$`, steps.listContainsClaim)
	ctx.Step(`^an operator marks the submitted claim as "([^"]*)"$`, steps.decide)
	ctx.Step(`^an unauthenticated caller marks the submitted claim as "([^"]*)"$`, steps.decideWithoutCredentials)
	ctx.Step(`^the buyer should be denied with "([^"]*)"$`, steps.deniedWith)
}

type containmentSteps struct {
	tc      TestContext
	claimID string
}

func (s *containmentSteps) buyerFromOrigin(ctx context.Context, origin string) error {
	s.tc.SetOrigin(origin)
	return nil
}

func (s *containmentSteps) buyerFromOriginWithIdentity(ctx context.Context, origin, identity string) error {
	s.tc.SetOrigin(origin)
	s.tc.SetIdentity(identity)
	return nil
}

func (s *containmentSteps) submitScreenshot(ctx context.Context, amount string) error {
	if err := s.tc.SubmitClaim(amount); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() == http.StatusOK {
		id, err := s.tc.GetResponseField("claim_id")
		if err != nil {
			return err
		}
		s.claimID = fmt.Sprint(id)
	}
	return nil
}

func (s *containmentSteps) claimPendingReview(ctx context.Context) error {
	if s.tc.GetLastResponseStatus() != http.StatusOK {
		return fmt.Errorf("expected 200, got %d: %s", s.tc.GetLastResponseStatus(), s.tc.GetLastResponseBody())
	}
	status, err := s.tc.GetResponseField("status")
	if err != nil {
		return err
	}
	if status != "pending_review" {
		return fmt.Errorf("expected pending_review, got %v", status)
	}
	return nil
}

func (s *containmentSteps) listClaims(ctx context.Context, status string) error {
	q := url.Values{"status": {status}, "limit": {"100"}}
	return s.tc.GET("/api/admin/requests?"+q.Encode(), s.tc.AdminHeaders())
}

func (s *containmentSteps) listContainsClaim(ctx context.Context) error {
	if s.claimID == "" {
		return fmt.Errorf("no claim was submitted in this scenario")
	}
	var page struct {
		Claims []struct {
			ID string `json:"id"`
		} `json:"claims"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &page); err != nil {
		return fmt.Errorf("decode claim list: %w", err)
	}
	for _, c := range page.Claims {
		if c.ID == s.claimID {
			return nil
		}
	}
	return fmt.Errorf("claim %s not in first page of %d claims", s.claimID, len(page.Claims))
}

func (s *containmentSteps) decide(ctx context.Context, decision string) error {
	return s.tc.POST("/api/admin/decision", s.decisionBody(decision), s.tc.AdminHeaders())
}

func (s *containmentSteps) decideWithoutCredentials(ctx context.Context, decision string) error {
	return s.tc.POST("/api/admin/decision", s.decisionBody(decision), nil)
}

func (s *containmentSteps) decisionBody(decision string) map[string]string {
	return map[string]string{
		"claim_id": s.claimID,
		"decision": decision,
		"reason":   "e2e",
	}
}

func (s *containmentSteps) deniedWith(ctx context.Context, code string) error {
	if got := s.tc.GetLastResponseStatus(); got != http.StatusForbidden {
		return fmt.Errorf("expected 403, got %d: %s", got, s.tc.GetLastResponseBody())
	}
	errField, err := s.tc.GetResponseField("error")
	if err != nil {
		return err
	}
	if errField != code {
		return fmt.Errorf("expected error %q, got %v", code, errField)
	}
	return nil
}
