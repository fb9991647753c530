// Package middleware puts the access gate in front of HTTP handlers.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"fraudgate/internal/access/gate"
	"fraudgate/pkg/platform/httputil"
	"fraudgate/pkg/requestcontext"
)

// StatusHeader reports a fail-open pass on the response.
const StatusHeader = "X-Access-Status"

// ExemptPrefix marks operator routes that skip the identity check.
const ExemptPrefix = "/api/admin"

// Checker is the part of the gate the middleware needs.
type Checker interface {
	Check(ctx context.Context, req gate.Request) gate.Outcome
}

// DeniedResponse is the 403 body returned to banned callers.
type DeniedResponse struct {
	Error    string `json:"error"`
	Reason   string `json:"reason,omitempty"`
	Redirect string `json:"redirect"`
}

// RequireAccess runs the gate with the origin and identity placed on the
// context by the metadata middleware, which must run first.
func RequireAccess(checker Checker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			out := checker.Check(ctx, gate.Request{
				Origin:   requestcontext.ClientIP(ctx),
				Identity: requestcontext.Identity(ctx),
				Exempt:   isExempt(r.URL.Path),
			})

			switch out.Decision {
			case gate.Deny:
				httputil.WriteJSON(w, http.StatusForbidden, DeniedResponse{
					Error:    "access_denied",
					Reason:   out.Reason,
					Redirect: out.Redirect,
				})
				return
			case gate.DegradedAllow:
				w.Header().Set(StatusHeader, "degraded")
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isExempt(path string) bool {
	return path == ExemptPrefix || strings.HasPrefix(path, ExemptPrefix+"/")
}
