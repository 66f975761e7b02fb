// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tooni-app/salesdesk/internal/model"
	"github.com/tooni-app/salesdesk/internal/suggest"
	"github.com/tooni-app/salesdesk/pkg/logger"
	"github.com/tooni-app/salesdesk/pkg/metrics"
)

// SuggestionHandler handles the AI suggestion and summary endpoints.
type SuggestionHandler struct {
	provider suggest.CompletionProvider
	logger   *logger.Logger

	// rate produces the synthetic conversion rate attached to
	// provider-generated suggestions. Swappable in tests.
	rate func() int
}

// NewSuggestionHandler creates a new suggestion handler.
func NewSuggestionHandler(provider suggest.CompletionProvider, log *logger.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		provider: provider,
		logger:   log,
		rate:     suggest.SyntheticRate,
	}
}

// Suggestions handles POST /api/v1/suggestions.
//
// Unlike the summary endpoint, upstream failures surface here as 500s; the
// degrade-to-heuristics policy belongs to the gateway consuming this API, not
// to the route itself.
func (h *SuggestionHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Messages == nil {
		writeError(w, http.StatusBadRequest, "invalid request: messages array is required")
		return
	}

	if !h.provider.Configured() {
		h.logger.Error("suggestion request without provider credential")
		writeError(w, http.StatusInternalServerError, "API key não configurada")
		return
	}

	lines, err := h.provider.GenerateSuggestions(ctx, req.Messages)
	if err != nil {
		h.logger.Error("suggestion generation failed")
		writeErrorDetails(w, http.StatusInternalServerError, "erro ao chamar o provedor de IA", err.Error())
		return
	}

	metrics.RecordSuggestion("suggestions", "provider")
	writeJSON(w, http.StatusOK, model.SuggestionResult{
		Suggestions:    lines,
		Summary:        suggest.AnalysisSummary,
		ConversionRate: h.rate(),
	})
}

// Summary handles POST /api/v1/summary.
//
// This route never surfaces upstream failures: anything past body validation
// degrades to a static fallback with a neutral conversion rate.
func (h *SuggestionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Messages == nil {
		writeError(w, http.StatusBadRequest, "invalid request: messages array is required")
		return
	}

	if !h.provider.Configured() {
		writeJSON(w, http.StatusOK, model.SummaryResult{
			Summary:        suggest.SummaryUnavailable,
			ConversionRate: 50,
		})
		return
	}

	result, err := h.provider.GenerateSummary(ctx, req.Messages)
	if err != nil {
		h.logger.Warn("summary generation degraded to static fallback")
		writeJSON(w, http.StatusOK, model.SummaryResult{
			Summary:        suggest.SummaryFallback,
			ConversionRate: 50,
		})
		return
	}

	metrics.RecordSuggestion("summary", "provider")
	writeJSON(w, http.StatusOK, result)
}
