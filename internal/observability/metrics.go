package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Recharge API metrics.
	RechargeRequests *prometheus.CounterVec // labels: outcome={success,no_data,api_error,malformed,transport_error}
	RechargeDuration prometheus.Histogram

	// Assessment metrics.
	Assessments      *prometheus.CounterVec // labels: variant={synthetic,live}, recommendation={REDUCE,MAINTAIN,INCREASE}
	AssessmentErrors *prometheus.CounterVec // labels: variant, kind={input_missing,no_data,api_error,malformed,other}

	// Event publishing metrics.
	PublishErrors    prometheus.Counter
	PublisherEnabled prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)

	prometheus.MustRegister(
		m.RechargeRequests,
		m.RechargeDuration,
		m.Assessments,
		m.AssessmentErrors,
		m.PublishErrors,
		m.PublisherEnabled,
	)

	return m
}

// NewUnregisteredMetrics creates Metrics that are not registered anywhere,
// for one-shot commands that never serve /metrics.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics(true)
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		RechargeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ans_recharge",
			Name:      "api_requests_total",
			Help:      help("Nightly recharge API requests by outcome."),
		}, []string{"outcome"}),
		RechargeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ans_recharge",
			Name:      "api_duration_seconds",
			Help:      help("Nightly recharge API request duration in seconds."),
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		Assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ans_recharge",
			Name:      "assessments_total",
			Help:      help("Completed assessments by variant and recommended load tier."),
		}, []string{"variant", "recommendation"}),
		AssessmentErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ans_recharge",
			Name:      "assessment_errors_total",
			Help:      help("Assessments that ended without a recommendation, by variant and kind."),
		}, []string{"variant", "kind"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ans_recharge",
			Name:      "publish_errors_total",
			Help:      help("Assessment events that failed to publish."),
		}),
		PublisherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ans_recharge",
			Name:      "publisher_enabled",
			Help:      help("1 when assessment events are published, 0 otherwise."),
		}),
	}
}
