package handler

import (
	"time"

	claimmodels "fraudgate/internal/claim/models"
)

// SubmitResponse is returned for an accepted submission. It never carries the
// verdict.
type SubmitResponse struct {
	Message string `json:"message"`
	ClaimID string `json:"claim_id"`
	Status  string `json:"status"`
}

// DeniedResponse is the 403 body for banned or rejected submitters.
type DeniedResponse struct {
	Error    string `json:"error"`
	Reason   string `json:"reason,omitempty"`
	Redirect string `json:"redirect"`
}

// ClaimResponse is one claim in the operator listing.
type ClaimResponse struct {
	ID             string              `json:"id"`
	OriginHash     string              `json:"origin_hash"`
	Identity       string              `json:"identity,omitempty"`
	ExpectedAmount *float64            `json:"expected_amount,omitempty"`
	ContactInfo    string              `json:"contact_info"`
	EvidenceRef    string              `json:"evidence_ref,omitempty"`
	ClientPlatform string              `json:"client_platform,omitempty"`
	Verdict        claimmodels.Verdict `json:"verdict"`
	Status         string              `json:"status"`
	DecisionReason string              `json:"decision_reason,omitempty"`
	DecidedBy      string              `json:"decided_by,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	DecidedAt      *time.Time          `json:"decided_at,omitempty"`
}

// ListResponse is the body of GET /api/admin/requests.
type ListResponse struct {
	Claims     []ClaimResponse `json:"claims"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// DecisionResponse confirms an applied operator decision.
type DecisionResponse struct {
	ClaimID string `json:"claim_id"`
	Status  string `json:"status"`
}

func fromClaim(c *claimmodels.Claim) ClaimResponse {
	return ClaimResponse{
		ID:             c.ID,
		OriginHash:     c.OriginHash,
		Identity:       c.Identity,
		ExpectedAmount: c.ExpectedAmount,
		ContactInfo:    c.ContactInfo,
		EvidenceRef:    c.EvidenceRef,
		ClientPlatform: c.ClientPlatform,
		Verdict:        c.Verdict,
		Status:         string(c.Status),
		DecisionReason: c.DecisionReason,
		DecidedBy:      c.DecidedBy,
		CreatedAt:      c.CreatedAt,
		DecidedAt:      c.DecidedAt,
	}
}

func fromPage(page *claimmodels.Page) ListResponse {
	resp := ListResponse{Claims: make([]ClaimResponse, 0, len(page.Claims))}
	for _, c := range page.Claims {
		resp.Claims = append(resp.Claims, fromClaim(c))
	}
	if page.Next != nil {
		resp.NextCursor = claimmodels.EncodeCursor(*page.Next)
	}
	return resp
}
