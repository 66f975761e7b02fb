package suggest

import (
	"fmt"
	"strings"

	"github.com/tooni-app/salesdesk/internal/model"
)

// maxTranscriptMessages bounds the prompt size. Older context is intentionally
// truncated.
const maxTranscriptMessages = 15

const suggestionSystemPrompt = `Você é um assistente de vendas especializado em ajudar atendentes de WhatsApp a fechar negócios.
Você tem experiência em vendas consultivas e conhece técnicas avançadas de negociação.
Seu objetivo é ajudar o atendente a entender as necessidades do cliente, superar objeções e avançar na negociação.
Suas sugestões devem ser naturais, sutis e estratégicas - como um vendedor experiente faria.`

const summarySystemPrompt = `Você é um assistente especializado em análise de conversas de vendas. Sua tarefa é resumir conversas e estimar a probabilidade de conversão.`

// recent returns the last n messages of the sequence.
func recent(messages []model.Message, n int) []model.Message {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}

// transcript renders messages as role-labeled lines for prompt context.
func transcript(messages []model.Message) string {
	lines := make([]string, len(messages))
	for i, msg := range messages {
		lines[i] = fmt.Sprintf("%s: %s", roleLabel(msg.Sender), msg.Content)
	}
	return strings.Join(lines, "\n")
}

func roleLabel(s model.Sender) string {
	if s == model.SenderCustomer {
		return "Cliente"
	}
	return "Atendente"
}

func suggestionUserPrompt(messages []model.Message) string {
	lastSender := "atendente"
	lastContent := ""
	if len(messages) > 0 {
		last := messages[len(messages)-1]
		if last.Sender == model.SenderCustomer {
			lastSender = "cliente"
		}
		lastContent = last.Content
	}

	return fmt.Sprintf(`Analise a seguinte conversa entre um atendente e um cliente potencial:

%s

A última mensagem foi enviada pelo %s: "%s"

Com base nesta conversa e especialmente na última mensagem, sugira 3 respostas estratégicas que o atendente poderia usar.

As sugestões devem:
- Ser curtas e diretas (máximo 15 palavras)
- Não usar aspas ou formatação especial
- Parecer naturais e conversacionais
- Ser específicas ao contexto da conversa atual
- Evitar perguntas óbvias ou genéricas
- Incluir elementos de psicologia de vendas sutis

Retorne apenas as 3 sugestões, uma por linha, sem numeração ou explicações adicionais.`,
		transcript(messages), lastSender, lastContent)
}

func summaryUserPrompt(messages []model.Message) string {
	return fmt.Sprintf(`Analise a seguinte conversa entre um atendente e um cliente:

%s

Responda em formato JSON com as seguintes informações:
1. Um resumo conciso da conversa (campo "summary")
2. Uma estimativa da probabilidade de conversão em porcentagem de 0 a 100 (campo "conversionRate")

Exemplo de resposta:
{
  "summary": "O cliente demonstrou interesse no plano premium e questionou sobre descontos para pagamento anual.",
  "conversionRate": 65
}`,
		transcript(messages))
}
