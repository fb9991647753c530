// Package device turns User-Agent strings into short labels reviewers can read.
package device

import (
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// ParseUserAgent returns a display name like "Chrome on Intel Mac OS X 10_15_7".
func ParseUserAgent(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return unknownDevice
	}
	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := ua.OS()
	if os == "" {
		os = ua.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}
	label := fmt.Sprintf("%s on %s", browser, os)
	if ua.Mobile() {
		label += " (mobile)"
	}
	if ua.Bot() {
		label += " (bot)"
	}
	return strings.TrimSpace(label)
}
