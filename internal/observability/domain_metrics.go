package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeExecuted         = "executed"
	OutcomeBlocked          = "blocked"
	OutcomeRejected         = "rejected"
	OutcomeGenerationFailed = "generation_failed"
	OutcomeExecutionFailed  = "execution_failed"
)

var (
	askTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartcampus_ask_total",
			Help: "Total number of assistant questions by classified route.",
		},
		[]string{"route"},
	)
	sqlOutcomeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartcampus_sql_outcome_total",
			Help: "Outcome of generated statements on the sql route.",
		},
		[]string{"outcome"},
	)
	sqlRewritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartcampus_sql_rewrites_total",
			Help: "Statements rewritten by the access enforcer to add an identity filter.",
		},
		[]string{"role"},
	)
	generationLatencySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "smartcampus_generation_latency_seconds",
			Help:    "Language model completion latency.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
	)
	sqlExecutionLatencySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "smartcampus_sql_execution_latency_seconds",
			Help:    "Latency of approved statements against the campus database.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		askTotal,
		sqlOutcomeTotal,
		sqlRewritesTotal,
		generationLatencySeconds,
		sqlExecutionLatencySeconds,
	)
}

func ObserveAsk(route string) {
	askTotal.WithLabelValues(route).Inc()
}

func ObserveSQLOutcome(outcome string) {
	sqlOutcomeTotal.WithLabelValues(outcome).Inc()
}

func ObserveRewrite(role string) {
	sqlRewritesTotal.WithLabelValues(role).Inc()
}

func ObserveGenerationLatency(elapsed time.Duration) {
	generationLatencySeconds.Observe(elapsed.Seconds())
}

func ObserveExecutionLatency(elapsed time.Duration) {
	sqlExecutionLatencySeconds.Observe(elapsed.Seconds())
}
