// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	LeadValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_validations_total",
			Help: "Lead submissions validated, by result",
		},
		[]string{"result"},
	)

	LeadEvaluations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_evaluations_total",
			Help: "Eligibility evaluations performed",
		},
	)

	FundVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fund_verdicts_total",
			Help: "Per-fund eligibility verdicts",
		},
		[]string{"fund_id", "verdict"},
	)

	DeliveryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_attempts_total",
			Help: "Lead sink delivery attempts, by result",
		},
		[]string{"result"},
	)

	DeliveryAttemptDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "delivery_attempt_duration_seconds",
			Help:    "Duration of a single lead sink call",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
	)

	CatalogWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_writes_total",
			Help: "Fund catalog admin writes, by operation",
		},
		[]string{"op"},
	)
)
