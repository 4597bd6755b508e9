package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evinburada_turns_total",
			Help: "Total number of conversational turns by resulting intent kind",
		},
		[]string{"intent"},
	)

	ExtractionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evinburada_extraction_failures_total",
			Help: "Total number of turns whose intent extraction failed",
		},
		[]string{"backend"},
	)

	TurnsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evinburada_turns_rejected_total",
			Help: "Total number of turns rejected because another turn was in flight",
		},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evinburada_turn_duration_seconds",
			Help:    "Duration of a conversational turn including extraction and matching",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	MatchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evinburada_match_results",
			Help:    "Number of listings returned by the matcher",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	FeedbackActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evinburada_feedback_actions_total",
			Help: "Total number of feedback actions on listings",
		},
		[]string{"action"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "evinburada_memory_sessions",
			Help: "Number of sessions held by the in-memory store",
		},
	)
)
