package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voiceagent_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voiceagent_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Voice session metrics
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voiceagent_sessions_started_total",
			Help: "Total voice sessions started",
		},
	)

	TranscriptsReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voiceagent_transcripts_received_total",
			Help: "Total finalized transcripts received from Sayna",
		},
	)

	// Generation metrics
	GenerationAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voiceagent_generation_attempts_total",
			Help: "Total model generation attempts, including retries",
		},
	)

	GenerationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voiceagent_generation_failures_total",
			Help: "Total failed generation attempts",
		},
		[]string{"reason"}, // "rate_limit" or "error"
	)

	GenerationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voiceagent_generation_fallbacks_total",
			Help: "Total responses replaced by a fallback line",
		},
	)

	SentencesEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voiceagent_sentences_emitted_total",
			Help: "Total sentences emitted to the data channel",
		},
	)
)
