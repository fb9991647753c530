package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "fraudgate/pkg/domain-errors"
	"fraudgate/pkg/subject"
)

// SubjectKind distinguishes the two ban dimensions.
type SubjectKind string

const (
	KindOrigin   SubjectKind = "origin"
	KindIdentity SubjectKind = "identity"
)

// IsValid checks if the kind is one of the supported values.
func (k SubjectKind) IsValid() bool {
	return k == KindOrigin || k == KindIdentity
}

func (k SubjectKind) String() string {
	return string(k)
}

// ParseSubjectKind validates a kind coming from outside the process.
func ParseSubjectKind(s string) (SubjectKind, error) {
	k := SubjectKind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "kind must be origin or identity")
	}
	return k, nil
}

// Normalize canonicalizes a raw subject value for the given kind.
func Normalize(kind SubjectKind, raw string) string {
	switch kind {
	case KindOrigin:
		return subject.Origin(raw)
	case KindIdentity:
		return subject.Identity(raw)
	}
	return ""
}

// Source records what created a ban.
type Source string

const (
	SourceAutomated Source = "automated"
	SourceManual    Source = "manual"
)

// BanEntry is a permanent ban on one subject value.
type BanEntry struct {
	ID        string      `json:"id"`
	Kind      SubjectKind `json:"kind"`
	Value     string      `json:"value"`
	Reason    string      `json:"reason"`
	Source    Source      `json:"source"`
	ClaimID   string      `json:"claim_id,omitempty"`
	CreatedBy string      `json:"created_by,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewBanEntry normalizes the value and validates the entry.
func NewBanEntry(kind SubjectKind, rawValue, reason string, source Source, claimID string, now time.Time) (*BanEntry, error) {
	if !kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid ban kind")
	}
	value := Normalize(kind, rawValue)
	if value == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "ban value cannot be empty")
	}
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "ban reason cannot be empty")
	}
	if source != SourceAutomated && source != SourceManual {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid ban source")
	}
	return &BanEntry{
		ID:        uuid.NewString(),
		Kind:      kind,
		Value:     value,
		Reason:    reason,
		Source:    source,
		ClaimID:   claimID,
		CreatedAt: now,
	}, nil
}
