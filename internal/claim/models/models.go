package models

import (
	"encoding/base64"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "fraudgate/pkg/domain-errors"
)

// Status is the review state of a claim.
type Status string

const (
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusFraud         Status = "fraud"
)

// IsValid checks if the status is one of the supported values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingReview, StatusApproved, StatusFraud:
		return true
	}
	return false
}

// IsTerminal reports whether a decision has been made.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusFraud
}

// Decision is the outcome of a review, automated or human.
type Decision string

const (
	DecisionFraud      Decision = "fraud"
	DecisionLegitimate Decision = "legitimate"
)

// ParseDecision accepts the API spellings ("FAKE"/"REAL") as well as the
// canonical ones.
func ParseDecision(s string) (Decision, error) {
	switch s {
	case "FAKE", "fake", "fraud", "FRAUD":
		return DecisionFraud, nil
	case "REAL", "real", "legitimate", "LEGITIMATE":
		return DecisionLegitimate, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "decision must be REAL or FAKE")
}

// Verdict is the classifier's authenticity judgment for one artifact.
type Verdict struct {
	IsAuthentic bool    `json:"is_authentic"`
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
}

// UnavailableConfidence is the neutral confidence substituted when the
// classifier cannot be reached. It always routes to manual review.
const UnavailableConfidence = 0.5

// UnavailableVerdict is substituted when classification fails or times out.
func UnavailableVerdict() Verdict {
	return Verdict{
		IsAuthentic: true,
		Confidence:  UnavailableConfidence,
		Reason:      "classification unavailable",
	}
}

// Clamp keeps confidence inside [0,1]; classifiers occasionally report
// percentages or negative noise. Only values of 2 and above are read as
// percentages, anything else just over 1 is a slightly overconfident score.
func (v Verdict) Clamp() Verdict {
	switch {
	case math.IsNaN(v.Confidence):
		v.Confidence = 0
	case v.Confidence >= 2 && v.Confidence <= 100:
		v.Confidence /= 100
	case v.Confidence > 1:
		v.Confidence = 1
	case v.Confidence < 0:
		v.Confidence = 0
	}
	return v
}

// IsFraud applies the automated-fraud rule.
func (v Verdict) IsFraud(threshold float64) bool {
	return !v.IsAuthentic && v.Confidence > threshold
}

// Claim is a submitted purchase-verification request.
type Claim struct {
	ID         string `json:"id"`
	OriginHash string `json:"origin_hash"`
	// Origin is the live ban key. It never leaves the service boundary.
	Origin         string     `json:"-"`
	Identity       string     `json:"identity,omitempty"`
	ExpectedAmount *float64   `json:"expected_amount,omitempty"`
	ContactInfo    string     `json:"contact_info"`
	EvidenceRef    string     `json:"evidence_ref,omitempty"`
	MimeType       string     `json:"mime_type,omitempty"`
	ClientPlatform string     `json:"client_platform,omitempty"`
	Verdict        Verdict    `json:"verdict"`
	Status         Status     `json:"status"`
	DecisionReason string     `json:"decision_reason,omitempty"`
	DecidedBy      string     `json:"decided_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
}

// NewClaim creates a PendingReview claim with a fresh ID.
func NewClaim(originHash string, now time.Time) (*Claim, error) {
	if originHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "origin hash cannot be empty")
	}
	return &Claim{
		ID:         uuid.NewString(),
		OriginHash: originHash,
		Status:     StatusPendingReview,
		CreatedAt:  now,
	}, nil
}

// Cursor positions keyset pagination over claims ordered newest first.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// Page is one slice of a claim listing.
type Page struct {
	Claims []*Claim
	Next   *Cursor
}

// EncodeCursor renders a cursor as an opaque token.
func EncodeCursor(c Cursor) string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by EncodeCursor.
func DecodeCursor(token string) (*Cursor, error) {
	invalid := dErrors.New(dErrors.CodeInvalidInput, "invalid cursor")
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, invalid
	}
	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return nil, invalid
	}
	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, invalid
	}
	return &Cursor{CreatedAt: createdAt, ID: id}, nil
}

// ListQuery filters and pages a claim listing.
type ListQuery struct {
	Limit    int
	After    *Cursor
	Statuses []Status
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Normalize clamps the limit into [1, MaxListLimit].
func (q ListQuery) Normalize() ListQuery {
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultListLimit
	case q.Limit > MaxListLimit:
		q.Limit = MaxListLimit
	}
	return q
}

// Before reports whether c sorts after cursor in newest-first order.
func (c *Claim) Before(cursor Cursor) bool {
	if c.CreatedAt.Equal(cursor.CreatedAt) {
		return c.ID < cursor.ID
	}
	return c.CreatedAt.Before(cursor.CreatedAt)
}
