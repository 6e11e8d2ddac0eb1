// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnswersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartdm_answers_total",
			Help: "Answers produced, by resolver path and model",
		},
		[]string{"path", "model"},
	)

	SourceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartdm_source_fetch_total",
			Help: "Knowledge source fetches, by source and result status",
		},
		[]string{"source", "status"},
	)

	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smartdm_source_fetch_duration_seconds",
			Help:    "Duration of knowledge source fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	ContextTruncationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartdm_context_truncations_total",
			Help: "Context sections cut to the configured limit",
		},
		[]string{"section"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smartdm_generation_duration_seconds",
			Help:    "Duration of generation calls in seconds, including retries",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		},
		[]string{"provider", "model"},
	)

	GenerationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartdm_generation_failures_total",
			Help: "Generation calls that failed after retries",
		},
		[]string{"provider", "error_code"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartdm_source_cache_lookups_total",
			Help: "Source snapshot cache lookups, by source and hit/miss/error",
		},
		[]string{"source", "result"},
	)

	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartdm_alerts_total",
			Help: "Operational alerts, by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)
)
