package store

import (
	"fmt"
	"time"

	"github.com/tooni-app/salesdesk/internal/model"
)

// Seed loads the demo customers and conversations so the dashboard is usable
// without an external data source. State lives only for the process lifetime.
func (s *Store) Seed() {
	now := time.Now()
	ago := func(minutes int) time.Time { return now.Add(-time.Duration(minutes) * time.Minute) }

	joao := model.Customer{
		ID:                "cust-001",
		Name:              "João Silva",
		Phone:             "+55 11 98765-4321",
		FunnelStage:       model.StageInNegotiation,
		InterestedProduct: "Plano Premium Anual",
		LastInteraction:   now,
	}
	joaoMessages := []model.Message{
		seedMessage("msg-001", model.SenderAgent, "Olá João, tudo bem? Como posso ajudar você hoje?", ago(30)),
		seedMessage("msg-002", model.SenderCustomer, "Oi! Estou interessado no plano premium de vocês. Pode me dar mais informações?", ago(29)),
		seedMessage("msg-003", model.SenderAgent, "Claro! O plano premium inclui acesso a todas as funcionalidades da plataforma, suporte prioritário e até 10 usuários. Custa R$199/mês ou R$1990/ano com 2 meses grátis.", ago(28)),
		seedMessage("msg-004", model.SenderCustomer, "Entendi. E esse valor anual tem algum desconto adicional?", ago(27)),
		seedMessage("msg-005", model.SenderAgent, "Sim! No plano anual você economiza o equivalente a 2 meses, pagando R$1990 ao invés de R$2388.", ago(26)),
		seedMessage("msg-006", model.SenderCustomer, "Ótimo! E como funciona o período de teste?", ago(25)),
		seedMessage("msg-007", model.SenderAgent, "Oferecemos 14 dias de teste grátis com todas as funcionalidades do plano premium. Você pode cancelar a qualquer momento durante esse período sem custo algum.", ago(24)),
		seedMessage("msg-008", model.SenderCustomer, "Perfeito! Vou pensar um pouco e te aviso. Qual o prazo máximo para aproveitar esse desconto?", ago(23)),
	}

	maria := model.Customer{
		ID:                "cust-002",
		Name:              "Maria Oliveira",
		Phone:             "+55 21 97654-3210",
		FunnelStage:       model.StageNewLead,
		InterestedProduct: "Plano Básico Mensal",
		LastInteraction:   ago(30),
	}
	mariaMessages := []model.Message{
		seedMessage("msg-101", model.SenderAgent, "Olá Maria, bem-vinda à nossa plataforma! Como posso ajudar?", ago(60)),
		seedMessage("msg-102", model.SenderCustomer, "Oi! Queria saber mais sobre os planos básicos de vocês.", ago(59)),
		seedMessage("msg-103", model.SenderAgent, "Claro! Nosso plano básico custa R$49/mês e inclui as funcionalidades essenciais para começar.", ago(58)),
		seedMessage("msg-104", model.SenderCustomer, "Qual é o preço do plano básico?", ago(10)),
	}

	carlos := model.Customer{
		ID:                "cust-003",
		Name:              "Carlos Pereira",
		Phone:             "+55 31 96543-2109",
		FunnelStage:       model.StageWaitingPayment,
		InterestedProduct: "Plano Intermediário Anual",
		LastInteraction:   ago(120),
	}
	carlosMessages := []model.Message{
		seedMessage("msg-201", model.SenderAgent, "Olá Carlos, como vai? Em que posso ajudar hoje?", ago(180)),
		seedMessage("msg-202", model.SenderCustomer, "Preciso de mais informações sobre o suporte técnico do plano intermediário.", ago(179)),
		seedMessage("msg-203", model.SenderAgent, "O plano intermediário inclui suporte por email com tempo de resposta de até 4 horas em dias úteis.", ago(178)),
		seedMessage("msg-204", model.SenderCustomer, "Entendi. E quanto custa esse plano?", ago(177)),
		seedMessage("msg-205", model.SenderAgent, "O plano intermediário custa R$99/mês ou R$990/ano, com economia de 2 meses no pagamento anual.", ago(176)),
		seedMessage("msg-206", model.SenderCustomer, "Perfeito! Quero seguir com o plano anual. Como faço o pagamento?", ago(175)),
	}

	s.Add(joao, seedConversation("conv-001", joao, joaoMessages, 0))
	s.Add(maria, seedConversation("conv-002", maria, mariaMessages, 2))
	s.Add(carlos, seedConversation("conv-003", carlos, carlosMessages, 1))
}

func seedMessage(id string, sender model.Sender, content string, at time.Time) model.Message {
	return model.Message{ID: id, Sender: sender, Content: content, Timestamp: at}
}

func seedConversation(id string, customer model.Customer, messages []model.Message, unread int) model.Conversation {
	if len(messages) == 0 {
		panic(fmt.Sprintf("seed conversation %s has no messages", id))
	}
	last := messages[len(messages)-1]
	return model.Conversation{
		ID:              id,
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		Messages:        messages,
		LastMessage:     last.Content,
		LastMessageTime: last.Timestamp,
		UnreadCount:     unread,
	}
}
