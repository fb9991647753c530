package testutil

import (
	"net/http"

	"fraudgate/pkg/requestcontext"
)

// WithClient sets the normalized origin and User-Agent the metadata
// middleware would have placed on the request.
func WithClient(req *http.Request, origin, userAgent string) *http.Request {
	ctx := requestcontext.WithClientMetadata(req.Context(), origin, userAgent)
	return req.WithContext(ctx)
}

// WithIdentity sets the caller's account identity on the request.
func WithIdentity(req *http.Request, identity string) *http.Request {
	return req.WithContext(requestcontext.WithIdentity(req.Context(), identity))
}

// WithAdmin marks the request as coming from an authenticated operator.
func WithAdmin(req *http.Request, admin string) *http.Request {
	return req.WithContext(requestcontext.WithAdmin(req.Context(), admin))
}
