// Package heuristic produces deterministic reply suggestions and conversion
// estimates from conversation text alone. It is the network-free fallback for
// the suggestion pipeline, so everything here must be pure: identical input
// always yields identical output.
package heuristic

import (
	"strings"

	"github.com/tooni-app/salesdesk/internal/model"
)

const (
	baseRate = 50
	minRate  = 5
	maxRate  = 95
)

// Keyword groups scanned over the whole conversation for the conversion
// estimate. Adjustments are cumulative, not mutually exclusive.
var rateSignals = []struct {
	keywords []string
	delta    int
}{
	{[]string{"preço", "valor", "custo"}, 10},
	{[]string{"desconto", "promoção"}, 15},
	{[]string{"interessado", "gostei"}, 20},
	{[]string{"caro", "alto"}, -15},
	{[]string{"pensar", "avaliar"}, -10},
}

const (
	summaryNeutral = "O cliente demonstrou interesse nos produtos e está avaliando as opções."
	summaryHigh    = "O cliente demonstra alto interesse no produto e está próximo de fechar negócio. Recomenda-se oferecer condições especiais para finalizar a venda."
	summaryLow     = "O cliente parece hesitante e pode precisar de mais informações ou um incentivo adicional para avançar na negociação."
)

var defaultSuggestions = []string{
	"Você já utilizou alguma solução similar anteriormente?",
	"Qual seria o prazo ideal para implementação?",
	"Além de você, quem mais estaria envolvido na decisão de compra?",
}

// Suggestion sets tested against the last customer message, in priority order.
var suggestionGroups = []struct {
	keywords    []string
	suggestions []string
}{
	{
		keywords: []string{"preço", "valor", "custo"},
		suggestions: []string{
			"Qual é o seu orçamento para esta solução?",
			"Você prefere um plano mensal ou anual com desconto?",
			"Além do preço, quais outros fatores são importantes para sua decisão?",
		},
	},
	{
		keywords: []string{"funcionalidade", "recurso"},
		suggestions: []string{
			"Qual funcionalidade específica é mais importante para o seu negócio?",
			"Como você imagina utilizando esse recurso no dia a dia?",
			"Quais são os resultados que você espera alcançar com essa funcionalidade?",
		},
	},
	{
		keywords: []string{"pensar", "avaliar"},
		suggestions: []string{
			"O que você precisa para tomar uma decisão hoje?",
			"Quais são suas principais preocupações sobre o produto?",
			"Posso agendar uma demonstração personalizada para você e sua equipe?",
		},
	},
	{
		keywords: []string{"desconto", "promoção"},
		suggestions: []string{
			"Se conseguirmos um desconto especial, você estaria pronto para fechar hoje?",
			"Quantos usuários você precisaria no total?",
			"Você prefere um contrato mais longo com um desconto maior?",
		},
	},
}

// Suggest returns exactly 3 reply suggestions for the agent, keyed on the most
// recent customer message.
func Suggest(messages []model.Message) []string {
	last := lastCustomerMessage(messages)

	for _, group := range suggestionGroups {
		if containsAny(last, group.keywords) {
			return append([]string(nil), group.suggestions...)
		}
	}
	return append([]string(nil), defaultSuggestions...)
}

// Summarize estimates a conversion rate from keyword signals over the whole
// conversation and picks a narrative summary for it.
func Summarize(messages []model.Message) model.SummaryResult {
	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(strings.ToLower(msg.Content))
		b.WriteByte(' ')
	}
	all := b.String()

	rate := baseRate
	for _, sig := range rateSignals {
		if containsAny(all, sig.keywords) {
			rate += sig.delta
		}
	}
	rate = clamp(rate, minRate, maxRate)

	summary := summaryNeutral
	if rate > 70 {
		summary = summaryHigh
	} else if rate < 30 {
		summary = summaryLow
	}

	return model.SummaryResult{
		Summary:        summary,
		ConversionRate: rate,
	}
}

// lastCustomerMessage returns the lowercased content of the most recent
// customer-authored message, or "" if there is none.
func lastCustomerMessage(messages []model.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Sender == model.SenderCustomer {
			return strings.ToLower(messages[i].Content)
		}
	}
	return ""
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
