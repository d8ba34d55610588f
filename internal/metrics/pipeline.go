package metrics

import "github.com/prometheus/client_golang/prometheus"

// Justification synthesis metrics.
var (
	SynthesisRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_requests_total",
			Help:      "Total number of justification completion requests",
		},
		[]string{"provider", "model", "status"},
	)

	SynthesisRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synthesis_request_duration_seconds",
			Help:      "Justification completion duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"provider", "model"},
	)

	SynthesisFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_fallbacks_total",
			Help:      "Justifications replaced by profile text or the no-information sentinel",
		},
		[]string{"reason"}, // "empty_profile" / "error" / "disabled"
	)
)

// Retrieval metrics.
var (
	RetrievalPassesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_passes_total",
			Help:      "Similarity search passes by pass name and outcome",
		},
		[]string{"pass", "outcome"}, // outcome: "hit" / "empty" / "error"
	)

	RetrievedCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieved_candidates",
			Help:      "Number of candidates returned per search request",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
	)
)
