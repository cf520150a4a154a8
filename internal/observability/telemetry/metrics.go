package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Métricas de negócio
	IntentExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vox_intent_executions_total",
		Help: "Intents executed, by kind and terminal status",
	}, []string{"intent", "status"})

	IntentLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vox_intent_latency_seconds",
		Help:    "Time spent executing one intent",
		Buckets: prometheus.DefBuckets,
	}, []string{"intent"})

	BatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vox_intent_batches_total",
		Help: "Multi-intent batches, by aggregate result",
	}, []string{"result"})

	WeatherDeclinesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vox_weather_declines_total",
		Help: "Weather lookups declined by the daily limit",
	})

	VoiceCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vox_voice_commands_total",
		Help: "Voice transcripts processed, by outcome",
	}, []string{"outcome"})

	VoiceLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vox_voice_latency_seconds",
		Help:    "End-to-end latency of a voice command",
		Buckets: prometheus.DefBuckets,
	})

	// Métricas de infraestrutura
	AuditWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vox_audit_write_failures_total",
		Help: "Failed action record updates",
	})

	ExternalCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vox_external_calls_total",
		Help: "Calls to external services, by service and result",
	}, []string{"service", "result"})
)
