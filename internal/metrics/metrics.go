package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identifier_ai_requests_total",
			Help: "Total number of AI service requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "identifier_ai_request_duration_seconds",
			Help:    "Duration of AI service requests in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"operation"},
	)

	ReviewTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identifier_review_transitions_total",
			Help: "Total number of committed review state transitions",
		},
		[]string{"event"},
	)

	SubmissionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identifier_submission_failures_total",
			Help: "Submissions to external endpoints that failed and were soft-failed",
		},
		[]string{"endpoint"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "identifier_active_sessions",
			Help: "Number of review sessions held in memory",
		},
	)
)
