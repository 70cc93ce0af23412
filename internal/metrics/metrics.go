// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Completion outcomes recorded by the reply orchestrator.
const (
	OutcomeAnswered = "answered"
	OutcomeEmpty    = "empty"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
)

var (
	// StoreErrors counts failed store commands by backend and command.
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "askboard_store_errors_total",
		Help: "Total number of failed key-value store commands",
	}, []string{"backend", "command"})

	// Completions counts AI turns by outcome.
	Completions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "askboard_completions_total",
		Help: "Total number of AI turns by outcome",
	}, []string{"outcome"})

	// CompletionLatency observes the wall-clock time of provider calls.
	CompletionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "askboard_completion_latency_seconds",
		Help:    "Completion provider call latency in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16},
	})
)
