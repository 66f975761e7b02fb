// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LLMRequestDuration tracks LLM completion request duration.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "LLM completion request duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"model", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// SuggestionRequestsTotal tracks suggestion pipeline runs by result source.
	SuggestionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suggestion_requests_total",
			Help: "Suggestion pipeline runs",
		},
		[]string{"operation", "source"},
	)

	// SuggestionFallbacksTotal tracks heuristic fallbacks by reason.
	SuggestionFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suggestion_fallbacks_total",
			Help: "Heuristic fallbacks by reason",
		},
		[]string{"operation", "reason"},
	)

	// PanelFetchesTotal tracks panel fetch results by outcome.
	PanelFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_fetches_total",
			Help: "Suggestion panel fetches by outcome",
		},
		[]string{"outcome"},
	)

	// MessagesTotal tracks total messages appended to conversations.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total messages appended",
		},
		[]string{"sender"},
	)

	// StageChangesTotal tracks funnel stage transitions.
	StageChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_stage_changes_total",
			Help: "Funnel stage transitions",
		},
		[]string{"stage"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLLMRequest records metrics for an LLM completion.
func RecordLLMRequest(model, status string, duration float64, tokensIn, tokensOut int) {
	LLMRequestDuration.WithLabelValues(model, status).Observe(duration)
	LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
}

// RecordSuggestion records one pipeline run, source is "provider" or "heuristic".
func RecordSuggestion(operation, source string) {
	SuggestionRequestsTotal.WithLabelValues(operation, source).Inc()
}

// RecordFallback records one heuristic fallback.
func RecordFallback(operation, reason string) {
	SuggestionFallbacksTotal.WithLabelValues(operation, reason).Inc()
}

// RecordPanelFetch records a panel fetch outcome, "applied" or "stale".
func RecordPanelFetch(outcome string) {
	PanelFetchesTotal.WithLabelValues(outcome).Inc()
}
