package suggest

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/tooni-app/salesdesk/internal/heuristic"
	"github.com/tooni-app/salesdesk/internal/model"
	"github.com/tooni-app/salesdesk/pkg/logger"
	"github.com/tooni-app/salesdesk/pkg/metrics"
)

const (
	// AnalysisSummary is the static summary attached to provider-generated
	// suggestions. The suggestions call does not ask the provider for a
	// conversion analysis; that is the summary operation's job.
	AnalysisSummary = "Análise baseada no contexto da conversa atual."

	// SummaryUnavailable is returned by the summary endpoint when no provider
	// credential is configured.
	SummaryUnavailable = "Análise não disponível. Configure a chave de API."

	// SummaryFallback is returned by the summary endpoint when the upstream
	// call fails.
	SummaryFallback = "Não foi possível analisar a conversa no momento."
)

// SyntheticRate returns a uniform-random conversion rate in [30,70). The
// suggestions path never asks the provider for a conversion estimate, so a
// plausible placeholder is attached instead.
func SyntheticRate() int {
	return rand.Intn(40) + 30
}

// CompletionProvider is the upstream half of the pipeline. *Provider is the
// real implementation.
type CompletionProvider interface {
	Configured() bool
	GenerateSuggestions(ctx context.Context, messages []model.Message) ([]string, error)
	GenerateSummary(ctx context.Context, messages []model.Message) (model.SummaryResult, error)
}

// Gateway orchestrates suggestion and summary fetches with a degrade-only
// failure policy: any upstream failure is converted into deterministic
// heuristic output, annotated with a warning. No error ever reaches callers
// and nothing is retried; the fallback is cheap, so one attempt is enough.
type Gateway struct {
	provider CompletionProvider
	logger   *logger.Logger

	// rate produces the synthetic conversion rate for the provider-success
	// suggestions path. Swappable in tests.
	rate func() int
}

// NewGateway creates a gateway over the given provider.
func NewGateway(provider CompletionProvider, log *logger.Logger) *Gateway {
	return &Gateway{
		provider: provider,
		logger:   log,
		rate:     SyntheticRate,
	}
}

// FetchSuggestions resolves to a usable suggestion result no matter what the
// upstream does. The error return is always nil; it exists to satisfy the
// panel's fetcher contract, which admits fetchers that can fail.
func (g *Gateway) FetchSuggestions(ctx context.Context, messages []model.Message) (model.SuggestionResult, error) {
	if !g.provider.Configured() {
		// No credential: short-circuit without a network call.
		return g.fallbackSuggestions(messages, ErrNotConfigured), nil
	}

	lines, err := g.provider.GenerateSuggestions(ctx, messages)
	if err != nil {
		return g.fallbackSuggestions(messages, err), nil
	}

	metrics.RecordSuggestion("suggestions", "provider")
	return model.SuggestionResult{
		Suggestions:    lines,
		Summary:        AnalysisSummary,
		ConversionRate: g.rate(),
	}, nil
}

// FetchSummary resolves to a summary no matter what the upstream does,
// degrading silently to the heuristic estimate.
func (g *Gateway) FetchSummary(ctx context.Context, messages []model.Message) model.SummaryResult {
	if !g.provider.Configured() {
		metrics.RecordFallback("summary", fallbackReason(ErrNotConfigured))
		return heuristic.Summarize(messages)
	}

	result, err := g.provider.GenerateSummary(ctx, messages)
	if err != nil {
		g.logger.Warn("summary fetch degraded to heuristic")
		metrics.RecordFallback("summary", fallbackReason(err))
		return heuristic.Summarize(messages)
	}

	metrics.RecordSuggestion("summary", "provider")
	return result
}

func (g *Gateway) fallbackSuggestions(messages []model.Message, cause error) model.SuggestionResult {
	g.logger.Warn("suggestion fetch degraded to heuristic")
	metrics.RecordFallback("suggestions", fallbackReason(cause))

	summary := heuristic.Summarize(messages)
	return model.SuggestionResult{
		Suggestions:    heuristic.Suggest(messages),
		Summary:        summary.Summary,
		ConversionRate: summary.ConversionRate,
		Warning:        fmt.Sprintf("Usando sugestões heurísticas: %v", cause),
	}
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrEmptyCompletion):
		return "empty_completion"
	case errors.Is(err, ErrNoSummaryJSON), errors.Is(err, ErrBadSummaryShape):
		return "parse_error"
	default:
		return "provider_error"
	}
}
