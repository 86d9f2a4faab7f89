package sentiment

import "github.com/prometheus/client_golang/prometheus"

const (
	sourceRemote   = "remote"
	sourceFallback = "fallback"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ustawi",
			Subsystem: "sentiment",
			Name:      "analyses_total",
			Help:      "Sentiment analyses by the source that produced the result.",
		},
		[]string{"source"},
	)

	remoteFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ustawi",
			Subsystem: "sentiment",
			Name:      "remote_failures_total",
			Help:      "Remote classification failures by reason.",
		},
		[]string{"reason"},
	)

	remoteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ustawi",
			Subsystem: "sentiment",
			Name:      "remote_duration_seconds",
			Help:      "Duration of remote classification requests.",
			Buckets:   []float64{.1, .25, .5, 1, 2, 4, 8, 16},
		},
	)

	breakerState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ustawi",
			Subsystem: "sentiment",
			Name:      "breaker_state",
			Help:      "Remote classifier circuit breaker state (0=closed, 1=half-open, 2=open).",
		},
	)
)

// RegisterMetrics registers the sentiment collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(analysesTotal, remoteFailuresTotal, remoteDuration, breakerState)
}
