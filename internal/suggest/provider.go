// Package suggest implements the AI suggestion pipeline: prompt construction,
// calls to the external text-generation provider, response parsing, and the
// heuristic fallback policy around all of it.
package suggest

import (
	"context"
	"errors"
	"strings"

	"github.com/tooni-app/salesdesk/internal/llm"
	"github.com/tooni-app/salesdesk/internal/model"
	"github.com/tooni-app/salesdesk/pkg/logger"
	"github.com/tooni-app/salesdesk/pkg/metrics"
)

var (
	// ErrNotConfigured means no provider credential is available. Permanent
	// until configuration changes; callers must not attempt a network call.
	ErrNotConfigured = errors.New("text-generation provider is not configured")

	// ErrEmptyCompletion means the provider returned no usable text.
	ErrEmptyCompletion = errors.New("empty completion from provider")
)

const (
	suggestionMaxTokens   = 250
	suggestionTemperature = 0.7
	summaryMaxTokens      = 200
	summaryTemperature    = 0.3
)

// Provider issues completion requests against the external text-generation
// API. Unlike the Gateway, its methods propagate errors.
type Provider struct {
	client llm.Client
	logger *logger.Logger
}

// NewProvider creates a provider over the given LLM client. A nil client is
// allowed and yields an unconfigured provider.
func NewProvider(client llm.Client, log *logger.Logger) *Provider {
	return &Provider{client: client, logger: log}
}

// Configured reports whether a provider credential is available.
func (p *Provider) Configured() bool {
	return p != nil && p.client != nil
}

// GenerateSuggestions asks the provider for up to 3 short reply suggestions
// keyed on the recent transcript.
func (p *Provider) GenerateSuggestions(ctx context.Context, messages []model.Message) ([]string, error) {
	if !p.Configured() {
		return nil, ErrNotConfigured
	}

	window := recent(messages, maxTranscriptMessages)

	resp, err := p.complete(ctx, &llm.CompletionRequest{
		System:      suggestionSystemPrompt,
		Messages:    []llm.ChatMessage{{Role: "user", Content: suggestionUserPrompt(window)}},
		MaxTokens:   suggestionMaxTokens,
		Temperature: suggestionTemperature,
	})
	if err != nil {
		return nil, err
	}

	lines := splitSuggestions(resp.Content)
	if len(lines) == 0 {
		return nil, ErrEmptyCompletion
	}
	return lines, nil
}

// GenerateSummary asks the provider for a JSON conversation summary and runs
// the raw output through ParseSummary.
func (p *Provider) GenerateSummary(ctx context.Context, messages []model.Message) (model.SummaryResult, error) {
	if !p.Configured() {
		return model.SummaryResult{}, ErrNotConfigured
	}

	window := recent(messages, maxTranscriptMessages)

	resp, err := p.complete(ctx, &llm.CompletionRequest{
		System:      summarySystemPrompt,
		Messages:    []llm.ChatMessage{{Role: "user", Content: summaryUserPrompt(window)}},
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	})
	if err != nil {
		return model.SummaryResult{}, err
	}

	return ParseSummary(resp.Content)
}

func (p *Provider) complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	resp, err := p.client.Complete(ctx, req)
	if err != nil {
		metrics.RecordLLMRequest(p.client.Name(), "error", 0, 0, 0)
		p.logger.Warn("llm completion failed")
		return nil, err
	}

	metrics.RecordLLMRequest(resp.Model, "success", float64(resp.LatencyMs)/1000.0, resp.TokensIn, resp.TokensOut)

	if strings.TrimSpace(resp.Content) == "" {
		return nil, ErrEmptyCompletion
	}
	return resp, nil
}

// splitSuggestions post-processes the raw completion text: split on line
// breaks, drop blank lines, keep at most the first 3 lines verbatim.
func splitSuggestions(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
		if len(out) == 3 {
			break
		}
	}
	return out
}
