package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for audit delivery.
type Metrics struct {
	Delivered prometheus.Counter
	Failed    prometheus.Counter
	Buffered  prometheus.Gauge
	Dropped   prometheus.Gauge
}

// NewMetrics registers audit metrics with the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		Delivered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fraudgate_audit_delivered_total",
			Help: "Total number of audit events delivered to the sink",
		}),
		Failed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fraudgate_audit_failed_total",
			Help: "Total number of audit events lost to sink errors",
		}),
		Buffered: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fraudgate_audit_buffered",
			Help: "Audit events waiting in the buffer",
		}),
		Dropped: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fraudgate_audit_dropped",
			Help: "Audit events evicted because the buffer was full",
		}),
	}
}
