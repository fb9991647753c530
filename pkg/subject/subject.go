// Package subject normalizes the two kinds of ban subjects: network origins and
// account identities. Every comparison or write of a subject goes through here,
// otherwise a ban could be bypassed with case or whitespace variations.
package subject

import (
	"net/netip"
	"strings"

	"golang.org/x/text/cases"
)

// Identity trims and case-folds an account identifier (an email address).
// An all-whitespace value normalizes to "", meaning "no identity".
func Identity(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	// Casers are stateful and not shared between goroutines.
	return cases.Fold().String(trimmed)
}

// Origin canonicalizes a network address. Anything that does not parse as an
// IP address normalizes to "", which never matches a ban.
func Origin(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	addr, err := netip.ParseAddr(trimmed)
	if err != nil {
		return ""
	}
	return addr.Unmap().WithZone("").String()
}
