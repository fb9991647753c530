package service

import (
	"fmt"
	"html"
	"strings"

	claimmodels "fraudgate/internal/claim/models"
)

// Status lines shown to operators.
const (
	StatusTextSuspicious = "AI Suspicious"
	StatusTextApproved   = "AI Approved (Real)"
	StatusTextSkipped    = "AI Skipped (Manual Review Needed)"
)

// StatusText summarizes a verdict for the operator alert. The neutral
// confidence means the classifier was skipped.
func StatusText(v claimmodels.Verdict) string {
	switch {
	case !v.IsAuthentic:
		return StatusTextSuspicious
	case v.Confidence == claimmodels.UnavailableConfidence:
		return StatusTextSkipped
	default:
		return StatusTextApproved
	}
}

// FormatNotification renders the Telegram-style HTML alert for a new claim.
func FormatNotification(claim *claimmodels.Claim) string {
	icon := "✅"
	if !claim.Verdict.IsAuthentic {
		icon = "⚠️"
	}
	reason := claim.Verdict.Reason
	if reason == "" {
		reason = "No analysis details provided."
	}
	contact := claim.ContactInfo
	if contact == "" {
		contact = "N/A"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>New Purchase Received</b> %s\n\n", icon)
	fmt.Fprintf(&b, "<b>Claim ID:</b> <code>%s</code>\n", html.EscapeString(claim.ID))
	fmt.Fprintf(&b, "<b>Status:</b> %s\n", StatusText(claim.Verdict))
	fmt.Fprintf(&b, "<b>Confidence:</b> %.1f%%\n", claim.Verdict.Confidence*100)
	if claim.ExpectedAmount != nil {
		fmt.Fprintf(&b, "<b>Expected Amount:</b> $%.2f\n", *claim.ExpectedAmount)
	}
	fmt.Fprintf(&b, "<b>Contact:</b> %s\n", html.EscapeString(contact))
	if claim.Identity != "" {
		fmt.Fprintf(&b, "<b>Account:</b> %s\n", html.EscapeString(claim.Identity))
	}
	fmt.Fprintf(&b, "\n<b>AI Analysis:</b>\n<i>%s</i>\n", html.EscapeString(reason))
	if claim.EvidenceRef != "" {
		fmt.Fprintf(&b, "\n<a href=\"%s\">View Screenshot</a>", html.EscapeString(claim.EvidenceRef))
	}
	return b.String()
}
