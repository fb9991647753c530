package models

import (
	"math"
	"strconv"
	"strings"

	claimmodels "fraudgate/internal/claim/models"
	dErrors "fraudgate/pkg/domain-errors"
)

// DefaultContactInfo is recorded when the submitter leaves contact details out.
const DefaultContactInfo = "Not Provided"

// Submission is one uploaded purchase proof with its request context.
type Submission struct {
	Artifact       []byte
	MimeType       string
	Origin         string
	Identity       string
	ExpectedAmount *float64
	ContactInfo    string
	UserAgent      string
}

// Validate checks the submission before any stage runs.
func (s *Submission) Validate(maxBytes int64) error {
	if len(s.Artifact) == 0 {
		return dErrors.New(dErrors.CodeValidation, "screenshot is required")
	}
	if maxBytes > 0 && int64(len(s.Artifact)) > maxBytes {
		return dErrors.New(dErrors.CodeValidation, "screenshot is too large")
	}
	if !strings.HasPrefix(s.MimeType, "image/") {
		return dErrors.New(dErrors.CodeValidation, "only image files are allowed")
	}
	if s.ExpectedAmount != nil {
		if !isFinite(*s.ExpectedAmount) {
			return dErrors.New(dErrors.CodeValidation, "expected amount must be a number")
		}
		if *s.ExpectedAmount < 0 {
			return dErrors.New(dErrors.CodeValidation, "expected amount cannot be negative")
		}
	}
	return nil
}

// ParseExpectedAmount reads the optional amount form field. Blank and "none"
// mean no amount was given.
func ParseExpectedAmount(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "none") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	// ParseFloat accepts "NaN" and "Inf"; neither can be stored or rendered.
	if err != nil || !isFinite(v) {
		return nil, dErrors.New(dErrors.CodeValidation, "expected amount must be a number")
	}
	return &v, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ClassifyInput is what the classifier sees. Identity and origin are
// deliberately absent.
type ClassifyInput struct {
	Artifact       []byte
	MimeType       string
	ExpectedAmount *float64
}

// Result is what the pipeline reports back to the submitter. It never carries
// the verdict or its confidence.
type Result struct {
	ClaimID  string
	Status   claimmodels.Status
	Denied   bool
	Reason   string
	Redirect string
}
