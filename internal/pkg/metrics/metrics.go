package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CycleTotal counts aggregation cycles by outcome (applied, stale, error).
	CycleTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetrics_aggregation_cycles_total",
			Help: "Total number of aggregation cycles by outcome.",
		},
		[]string{"outcome"},
	)

	// BatchFetchDuration observes the latency of telemetry batch fetches.
	BatchFetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleetrics_batch_fetch_duration_seconds",
			Help:    "Latency of telemetry API batch fetches.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ClassificationPersistTotal counts classification blob writes by status.
	ClassificationPersistTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetrics_classification_persist_total",
			Help: "Total number of classification persist attempts.",
		},
		[]string{"status"},
	)

	// AssistantPollAttempts observes how many polls an assistant query took.
	AssistantPollAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleetrics_assistant_poll_attempts",
			Help:    "Poll attempts per assistant query.",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 30},
		},
	)

	// AssistantQueryTotal counts assistant queries by terminal state.
	AssistantQueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetrics_assistant_queries_total",
			Help: "Total number of assistant queries by terminal state.",
		},
		[]string{"state"},
	)
)

func init() {
	prometheus.MustRegister(
		CycleTotal,
		BatchFetchDuration,
		ClassificationPersistTotal,
		AssistantPollAttempts,
		AssistantQueryTotal,
	)
}
