// Package metrics provides Prometheus metrics for hotel-curator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hotelcurator"

var (
	// SearchesTotal counts finished searches by outcome.
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of searches by outcome",
		},
		[]string{"outcome"},
	)

	// StageDuration measures how long each pipeline stage took.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	// CandidatesCount observes candidate counts at each narrowing step.
	CandidatesCount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "candidates",
			Help:      "Distribution of candidate counts per step",
			Buckets:   []float64{1, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
		[]string{"step"},
	)

	// JudgeCallsTotal counts judgment service calls by provider and status.
	JudgeCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "judge_calls_total",
			Help:      "Total number of judgment service calls",
		},
		[]string{"provider", "status"},
	)

	// JudgeCallDuration measures judgment call latency.
	JudgeCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "judge_call_duration_seconds",
			Help:      "Duration of judgment service calls in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"provider"},
	)

	// ScoringBatchesTotal counts batch outcomes.
	ScoringBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_batches_total",
			Help:      "Total number of scoring batch outcomes",
		},
		[]string{"outcome"},
	)

	// InventoryCallsTotal counts inventory API calls by endpoint and status.
	InventoryCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_calls_total",
			Help:      "Total number of inventory API calls",
		},
		[]string{"endpoint", "status"},
	)

	// InventoryCallDuration measures inventory API latency.
	InventoryCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inventory_call_duration_seconds",
			Help:      "Duration of inventory API calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// ContentCacheTotal counts content cache lookups.
	ContentCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_cache_lookups_total",
			Help:      "Total number of content cache lookups",
		},
		[]string{"backend", "result"},
	)

	// ActiveStreams tracks open event streams.
	ActiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_streams",
			Help:      "Number of open search event streams",
		},
	)
)

// RecordStage records a finished pipeline stage.
func RecordStage(stage string, seconds float64) {
	StageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordJudgeCall records one judgment service call.
func RecordJudgeCall(provider, status string, seconds float64) {
	JudgeCallsTotal.WithLabelValues(provider, status).Inc()
	JudgeCallDuration.WithLabelValues(provider).Observe(seconds)
}

// RecordInventoryCall records one inventory API call.
func RecordInventoryCall(endpoint, status string, seconds float64) {
	InventoryCallsTotal.WithLabelValues(endpoint, status).Inc()
	InventoryCallDuration.WithLabelValues(endpoint).Observe(seconds)
}

// RecordCacheLookup records a content cache hit or miss.
func RecordCacheLookup(backend string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	ContentCacheTotal.WithLabelValues(backend, result).Inc()
}
