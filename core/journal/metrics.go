package journal

import "github.com/prometheus/client_golang/prometheus"

var streakAlertsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "ustawi",
		Subsystem: "journal",
		Name:      "streak_alerts_total",
		Help:      "Sentiment stats computed with a negative streak alert.",
	},
)

// RegisterMetrics registers the journal collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(streakAlertsTotal)
}
