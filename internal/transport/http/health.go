package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"fraudgate/pkg/platform/httputil"
)

// Pinger is anything the readiness check can ping (database, Redis).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Health serves liveness and readiness checks.
type Health struct {
	checks  map[string]Pinger
	timeout time.Duration
	logger  *slog.Logger
}

// NewHealth builds checks over the named dependencies. Nil pingers are skipped
// so unconfigured backends do not fail readiness.
func NewHealth(logger *slog.Logger, checks map[string]Pinger) *Health {
	h := &Health{checks: make(map[string]Pinger, len(checks)), timeout: 2 * time.Second, logger: logger}
	for name, p := range checks {
		if p != nil {
			h.checks[name] = p
		}
	}
	return h
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Live reports that the process is serving.
func (h *Health) Live(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Ready pings every configured dependency.
func (h *Health) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK
	for name, p := range h.checks {
		if err := p.PingContext(ctx); err != nil {
			h.logger.WarnContext(ctx, "readiness check failed", "dependency", name, "error", err)
			resp.Checks[name] = "unavailable"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	httputil.WriteJSON(w, status, resp)
}
