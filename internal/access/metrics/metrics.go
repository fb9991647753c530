package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the access gate.
type Metrics struct {
	Outcomes       *prometheus.CounterVec
	CacheHits      prometheus.Counter
	StoreLookups   *prometheus.CounterVec
	StoreErrors    *prometheus.CounterVec
	BreakerState   *prometheus.GaugeVec
	LookupDuration *prometheus.HistogramVec
}

// New creates and registers the access metrics.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fraudgate_access_outcomes_total",
			Help: "Access gate outcomes by decision and reason",
		}, []string{"decision", "reason"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fraudgate_access_cache_hits_total",
			Help: "Requests denied from the local banned-origin cache",
		}),
		StoreLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fraudgate_access_store_lookups_total",
			Help: "Ban store lookups issued by the gate, by subject kind",
		}, []string{"kind"}),
		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fraudgate_access_store_errors_total",
			Help: "Ban store lookups that failed or were skipped by an open breaker",
		}, []string{"kind"}),
		BreakerState: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fraudgate_access_breaker_open",
			Help: "Circuit breaker state per subject kind (0=closed, 1=open)",
		}, []string{"kind"}),
		LookupDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fraudgate_access_lookup_duration_seconds",
			Help:    "Ban store lookup latency by subject kind",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"kind"}),
	}
}

func (m *Metrics) ObserveOutcome(decision, reason string) {
	m.Outcomes.WithLabelValues(decision, reason).Inc()
}

func (m *Metrics) SetBreakerOpen(kind string, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	m.BreakerState.WithLabelValues(kind).Set(v)
}
