// Package request assigns a correlation ID to every inbound request.
package request

import (
	"net/http"

	"github.com/google/uuid"

	"fraudgate/pkg/requestcontext"
)

// Header is echoed back on every response.
const Header = "X-Request-ID"

// RequestID reuses a caller-supplied X-Request-ID when it is a UUID and
// generates a fresh one otherwise.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), id)))
	})
}
