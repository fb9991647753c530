package metadata

import (
	"net"
	"net/http"
	"strings"

	"fraudgate/pkg/requestcontext"
	"fraudgate/pkg/subject"
)

// IdentityHeader carries the caller's account identity (email) on storefront requests.
const IdentityHeader = "X-User-Email"

// ClientMetadata extracts the request origin, identity and User-Agent and adds
// them to the context, already normalized. Apply it before the access gate.
//
// When trustProxy is true the first X-Forwarded-For / X-Real-IP hop is used as
// the origin; only enable it behind a proxy that overwrites those headers.
func ClientMetadata(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := subject.Origin(ClientIPFromRequest(r, trustProxy))

			ctx := requestcontext.WithClientMetadata(r.Context(), origin, r.Header.Get("User-Agent"))
			if identity := subject.Identity(r.Header.Get(IdentityHeader)); identity != "" {
				ctx = requestcontext.WithIdentity(ctx, identity)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIPFromRequest extracts the raw client address, handling proxies when
// trusted. The result is not validated; callers normalize it.
func ClientIPFromRequest(r *http.Request, trustProxy bool) string {
	if trustProxy {
		// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...);
		// the first is the original client.
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if idx := strings.Index(xff, ","); idx != -1 {
				return strings.TrimSpace(xff[:idx])
			}
			return strings.TrimSpace(xff)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
