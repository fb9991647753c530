package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the verification pipeline.
type Metrics struct {
	Submissions         *prometheus.CounterVec
	ClassifierResults   *prometheus.CounterVec
	StageDuration       *prometheus.HistogramVec
	NotificationFailure prometheus.Counter
}

// New creates and registers the pipeline metrics.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fraudgate_submissions_total",
			Help: "Claim submissions by pipeline outcome",
		}, []string{"outcome"}),
		ClassifierResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fraudgate_classifier_results_total",
			Help: "Classifier verdicts: authentic, suspicious, fraud or unavailable",
		}, []string{"result"}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fraudgate_pipeline_stage_duration_seconds",
			Help:    "Duration of each verification pipeline stage",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"stage"}),
		NotificationFailure: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fraudgate_notification_failures_total",
			Help: "Operator notifications that could not be delivered",
		}),
	}
}

func (m *Metrics) IncSubmission(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncClassifierResult(result string) {
	m.ClassifierResults.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
