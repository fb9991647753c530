// Package httptransport assembles the public HTTP surface: platform middleware,
// the access gate, claim intake and operator routes.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	accessmw "fraudgate/internal/access/middleware"
	"fraudgate/internal/platform/metrics"
	"fraudgate/internal/verification/handler"
	"fraudgate/pkg/platform/middleware/metadata"
	"fraudgate/pkg/platform/middleware/request"
	"fraudgate/pkg/platform/middleware/requesttime"
)

// Deps are the pieces the router mounts. Metrics, Admin and AllowedOrigins are
// optional.
type Deps struct {
	Logger         *slog.Logger
	TrustProxy     bool
	AllowedOrigins []string
	Metrics        *metrics.Metrics
	Access         accessmw.Checker
	Claims         *handler.Handler
	// Admin authenticates operators. Without it the operator routes are not
	// mounted at all.
	Admin  func(http.Handler) http.Handler
	Health *Health
}

// NewRouter wires the middleware chain in the order the gate depends on:
// request id, request time and client metadata must be on the context before
// the access check runs.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata(d.TrustProxy))
	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: d.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", metadata.IdentityHeader, request.Header, "X-Admin-Token"},
			ExposedHeaders: []string{request.Header, accessmw.StatusHeader},
			MaxAge:         300,
		}))
	}
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	if d.Health != nil {
		r.Get("/health", d.Health.Live)
		r.Get("/ready", d.Health.Ready)
	}

	r.Group(func(r chi.Router) {
		r.Use(accessmw.RequireAccess(d.Access))
		d.Claims.Register(r)

		if d.Admin != nil {
			r.Group(func(r chi.Router) {
				r.Use(d.Admin)
				d.Claims.RegisterAdmin(r)
			})
		} else if d.Logger != nil {
			d.Logger.Warn("no admin authentication configured, operator routes disabled")
		}
	})

	return r
}
