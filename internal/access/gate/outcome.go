package gate

// Decision is the gate's verdict on a request.
type Decision int

const (
	Allow Decision = iota
	Deny
	DegradedAllow
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	case DegradedAllow:
		return "degraded_allow"
	}
	return "unknown"
}

// Deny reasons.
const (
	ReasonOriginBanned  = "origin banned"
	ReasonAccountBanned = "account banned"
)

// Outcome is the result of an access check. Reason and Redirect are set for
// Deny; Warning is set for DegradedAllow.
type Outcome struct {
	Decision Decision
	Reason   string
	Redirect string
	Warning  string
}

// Allowed reports whether the request may proceed.
func (o Outcome) Allowed() bool {
	return o.Decision != Deny
}

func allow() Outcome {
	return Outcome{Decision: Allow}
}

func deny(reason, redirect string) Outcome {
	return Outcome{Decision: Deny, Reason: reason, Redirect: redirect}
}

func degraded(warning string) Outcome {
	return Outcome{Decision: DegradedAllow, Warning: warning}
}
