// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Interpretations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docextract_interpretations_total",
			Help: "Total number of replies interpreted, by the path that produced the field map",
		},
		[]string{"source"},
	)

	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docextract_llm_requests_total",
			Help: "Total number of chat completion requests by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docextract_llm_request_duration_seconds",
			Help:    "Duration of chat completion requests in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 120},
		},
		[]string{"provider"},
	)

	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docextract_uploads_total",
			Help: "Total number of document uploads by content kind",
		},
		[]string{"kind"},
	)
)

// Request outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
	OutcomeSkipped     = "circuit_open"
)
