// Package admin guards operator endpoints. A request is admitted with either a
// shared X-Admin-Token or a bearer JWT whose email claim is an allowed operator.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	dErrors "fraudgate/pkg/domain-errors"
	"fraudgate/pkg/platform/httputil"
	"fraudgate/pkg/requestcontext"
	"fraudgate/pkg/subject"
)

// TokenValidator resolves a bearer token to an operator email.
type TokenValidator interface {
	AdminEmail(token string) (string, error)
}

type Config struct {
	// StaticToken enables X-Admin-Token auth when non-empty.
	StaticToken string
	// Emails lists operators allowed through bearer tokens.
	Emails []string
}

// RequireAdmin returns middleware that rejects non-operators. validator may be
// nil, which disables bearer-token auth.
func RequireAdmin(cfg Config, validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(cfg.Emails))
	for _, e := range cfg.Emails {
		if n := subject.Identity(e); n != "" {
			allowed[n] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token := r.Header.Get("X-Admin-Token"); token != "" && cfg.StaticToken != "" {
				// Use constant-time comparison to prevent timing attacks
				if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.StaticToken)) == 1 {
					next.ServeHTTP(w, r.WithContext(requestcontext.WithAdmin(ctx, "static-token")))
					return
				}
				logger.WarnContext(ctx, "admin token mismatch", "request_id", requestcontext.RequestID(ctx))
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}

			bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || validator == nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin access denied"))
				return
			}

			email, err := validator.AdminEmail(strings.TrimSpace(bearer))
			if err != nil {
				logger.WarnContext(ctx, "admin bearer token rejected",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
				return
			}
			if _, ok := allowed[email]; !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "not an admin"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithAdmin(ctx, email)))
		})
	}
}
