// Package metrics holds the Prometheus collectors of the scorer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScoringRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_scoring_requests_total",
			Help: "Total number of scoring calls by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	ScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resume_scoring_duration_seconds",
			Help:    "Duration of scoring calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
		[]string{"strategy"},
	)

	RemoteFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_scoring_remote_fallbacks_total",
			Help: "Remote scoring failures answered with a zero score",
		},
		[]string{"reason"},
	)

	RankedApplications = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resume_ranking_applications",
			Help:    "Number of applications left after each ranking step",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"step"},
	)
)

// Outcome labels for ScoringRequests.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeFallback = "fallback"
)
