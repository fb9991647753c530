// Package requesttime pins a single "now" per request so claim timestamps,
// ban entries and audit events written by one request agree with each other.
package requesttime

import (
	"net/http"
	"time"

	"fraudgate/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
