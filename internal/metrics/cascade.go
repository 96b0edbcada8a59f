package metrics

import "github.com/prometheus/client_golang/prometheus"

// Stage attempt outcomes.
const (
	OutcomeMatch   = "match"
	OutcomeNoMatch = "no_match"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Cascade and tool Prometheus metrics.
var (
	StageAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_stage_attempts_total",
			Help:      "Retrieval cascade stage attempts by outcome",
		},
		[]string{"stage", "outcome"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cascade_stage_duration_seconds",
			Help:      "Retrieval cascade stage duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"stage"},
	)

	CascadeResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_results_total",
			Help:      "Retrieval cascade responses by winning method or terminal state",
		},
		[]string{"result"},
	)

	ToolInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_invocations_total",
			Help:      "Tool invocations by tool and status",
		},
		[]string{"tool", "status"},
	)

	ToolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Tool invocation duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"tool"},
	)
)

var cascadeMetricsRegistered bool

// RegisterCascadeMetrics registers cascade and tool metrics. Must be called once from main.
func RegisterCascadeMetrics() {
	if cascadeMetricsRegistered {
		return
	}
	prometheus.MustRegister(StageAttemptsTotal)
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(CascadeResultsTotal)
	prometheus.MustRegister(ToolInvocationsTotal)
	prometheus.MustRegister(ToolDuration)
	cascadeMetricsRegistered = true
}
