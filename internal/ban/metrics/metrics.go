package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for ban escalation.
type Metrics struct {
	BansCreated      *prometheus.CounterVec
	BanWriteFailures *prometheus.CounterVec
	Decisions        *prometheus.CounterVec
}

// New creates and registers the ban metrics.
func New() *Metrics {
	return &Metrics{
		BansCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fraudgate_bans_created_total",
			Help: "Ban entries written, by subject kind and source",
		}, []string{"kind", "source"}),
		BanWriteFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fraudgate_ban_write_failures_total",
			Help: "Ban writes that failed after all retries, by subject kind",
		}, []string{"kind"}),
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fraudgate_claim_decisions_total",
			Help: "Claim decisions recorded, by decision and source",
		}, []string{"decision", "source"}),
	}
}

func (m *Metrics) IncBanCreated(kind, source string) {
	m.BansCreated.WithLabelValues(kind, source).Inc()
}

func (m *Metrics) IncBanWriteFailure(kind string) {
	m.BanWriteFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncDecision(decision, source string) {
	m.Decisions.WithLabelValues(decision, source).Inc()
}
