package audit

import "time"

// Action names an audited state change.
type Action string

const (
	ActionClaimReceived   Action = "claim_received"
	ActionClaimApproved   Action = "claim_approved"
	ActionClaimFraud      Action = "claim_fraud"
	ActionOriginBanned    Action = "origin_banned"
	ActionIdentityBanned  Action = "identity_banned"
	ActionBanWriteFailed  Action = "ban_write_failed"
	ActionAccessDenied    Action = "access_denied"
	ActionAccessDegraded  Action = "access_degraded"
	ActionClassifierFault Action = "classifier_unavailable"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out. Origins are recorded by hash only.
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	Action      Action    `json:"action"`
	SubjectKind string    `json:"subject_kind,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	ClaimID     string    `json:"claim_id,omitempty"`
	Actor       string    `json:"actor,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}
