package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for analysisTotal.
const (
	outcomeSuccess   = "success"
	outcomeFallback  = "fallback"
	outcomeCancelled = "cancelled"
	outcomeAbandoned = "abandoned"
)

var (
	// analysisTotal counts finished submissions by domain and outcome.
	analysisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nutrilog_analysis_total",
		Help: "Finished analysis submissions by domain and outcome",
	}, []string{"domain", "outcome"})

	// analysisDuration tracks submission-to-reconciliation latency.
	analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nutrilog_analysis_duration_seconds",
		Help:    "Time from submission to reconciliation in seconds",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 250ms to ~32s
	}, []string{"domain"})

	analysisInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nutrilog_analysis_in_flight",
		Help: "Pending analyses by domain",
	}, []string{"domain"})
)
