package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tooni-app/salesdesk/internal/model"
	"github.com/tooni-app/salesdesk/internal/suggest"
	"github.com/tooni-app/salesdesk/pkg/logger"
)

// fakeProvider implements suggest.CompletionProvider.
type fakeProvider struct {
	configured bool
	lines      []string
	linesErr   error
	summary    model.SummaryResult
	summaryErr error

	suggestionCalls int
	summaryCalls    int
}

func (f *fakeProvider) Configured() bool { return f.configured }

func (f *fakeProvider) GenerateSuggestions(ctx context.Context, messages []model.Message) ([]string, error) {
	f.suggestionCalls++
	return f.lines, f.linesErr
}

func (f *fakeProvider) GenerateSummary(ctx context.Context, messages []model.Message) (model.SummaryResult, error) {
	f.summaryCalls++
	return f.summary, f.summaryErr
}

func newSuggestionHandler(p *fakeProvider) *SuggestionHandler {
	h := NewSuggestionHandler(p, logger.NewNop())
	h.rate = func() int { return 61 }
	return h
}

func postJSON(t *testing.T, handlerFn http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handlerFn(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestSuggestions_Success(t *testing.T) {
	provider := &fakeProvider{configured: true, lines: []string{"um", "dois", "três"}}
	h := newSuggestionHandler(provider)

	rec := postJSON(t, h.Suggestions, `{"messages":[{"id":"m1","sender":"customer","content":"olá"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.SuggestionResult
	decodeBody(t, rec, &result)
	assert.Equal(t, []string{"um", "dois", "três"}, result.Suggestions)
	assert.Equal(t, suggest.AnalysisSummary, result.Summary)
	assert.Equal(t, 61, result.ConversionRate)
	assert.Empty(t, result.Warning)
}

func TestSuggestions_InvalidBody(t *testing.T) {
	h := newSuggestionHandler(&fakeProvider{configured: true})

	rec := postJSON(t, h.Suggestions, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "invalid request body", body["error"])
}

func TestSuggestions_MissingMessages(t *testing.T) {
	provider := &fakeProvider{configured: true}
	h := newSuggestionHandler(provider)

	rec := postJSON(t, h.Suggestions, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, provider.suggestionCalls)
}

func TestSuggestions_EmptyArrayIsAccepted(t *testing.T) {
	provider := &fakeProvider{configured: true, lines: []string{"oi"}}
	h := newSuggestionHandler(provider)

	rec := postJSON(t, h.Suggestions, `{"messages":[]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, provider.suggestionCalls)
}

func TestSuggestions_NotConfigured(t *testing.T) {
	provider := &fakeProvider{configured: false}
	h := newSuggestionHandler(provider)

	rec := postJSON(t, h.Suggestions, `{"messages":[{"id":"m1","sender":"customer","content":"olá"}]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "API key não configurada", body["error"])
	assert.Equal(t, 0, provider.suggestionCalls)
}

func TestSuggestions_ProviderError(t *testing.T) {
	provider := &fakeProvider{configured: true, linesErr: errors.New("timeout contacting upstream")}
	h := newSuggestionHandler(provider)

	rec := postJSON(t, h.Suggestions, `{"messages":[{"id":"m1","sender":"customer","content":"olá"}]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "erro ao chamar o provedor de IA", body["error"])
	assert.Equal(t, "timeout contacting upstream", body["details"])
}

func TestSummary_Success(t *testing.T) {
	provider := &fakeProvider{
		configured: true,
		summary:    model.SummaryResult{Summary: "cliente interessado", ConversionRate: 72},
	}
	h := newSuggestionHandler(provider)

	rec := postJSON(t, h.Summary, `{"messages":[{"id":"m1","sender":"customer","content":"olá"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.SummaryResult
	decodeBody(t, rec, &result)
	assert.Equal(t, "cliente interessado", result.Summary)
	assert.Equal(t, 72, result.ConversionRate)
}

func TestSummary_NotConfiguredDegradesTo200(t *testing.T) {
	provider := &fakeProvider{configured: false}
	h := newSuggestionHandler(provider)

	rec := postJSON(t, h.Summary, `{"messages":[{"id":"m1","sender":"customer","content":"olá"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.SummaryResult
	decodeBody(t, rec, &result)
	assert.Equal(t, suggest.SummaryUnavailable, result.Summary)
	assert.Equal(t, 50, result.ConversionRate)
	assert.Equal(t, 0, provider.summaryCalls)
}

func TestSummary_ProviderErrorDegradesTo200(t *testing.T) {
	provider := &fakeProvider{configured: true, summaryErr: errors.New("boom")}
	h := newSuggestionHandler(provider)

	rec := postJSON(t, h.Summary, `{"messages":[{"id":"m1","sender":"customer","content":"olá"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.SummaryResult
	decodeBody(t, rec, &result)
	assert.Equal(t, suggest.SummaryFallback, result.Summary)
	assert.Equal(t, 50, result.ConversionRate)
}

func TestSummary_MissingMessages(t *testing.T) {
	h := newSuggestionHandler(&fakeProvider{configured: true})

	rec := postJSON(t, h.Summary, `{"other":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
