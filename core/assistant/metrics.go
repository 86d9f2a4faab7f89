package assistant

import "github.com/prometheus/client_golang/prometheus"

const (
	kindChat       = "chat"
	kindAssignment = "assignment"

	sourceRemote   = "remote"
	sourceFallback = "fallback"
)

var (
	repliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ustawi",
			Subsystem: "assistant",
			Name:      "replies_total",
			Help:      "Assistant replies by kind and by the source that produced them.",
		},
		[]string{"kind", "source"},
	)

	remoteFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ustawi",
			Subsystem: "assistant",
			Name:      "remote_failures_total",
			Help:      "Remote completion failures by reason.",
		},
		[]string{"reason"},
	)
)

// RegisterMetrics registers the assistant collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(repliesTotal, remoteFailuresTotal)
}
