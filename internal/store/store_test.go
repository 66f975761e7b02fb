package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tooni-app/salesdesk/internal/model"
	"github.com/tooni-app/salesdesk/pkg/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(logger.NewNop())
	s.Add(
		model.Customer{ID: "cust-1", Name: "Ana", FunnelStage: model.StageNewLead},
		model.Conversation{
			ID:           "conv-1",
			CustomerID:   "cust-1",
			CustomerName: "Ana",
			Messages: []model.Message{
				{ID: "m1", Sender: model.SenderAgent, Content: "olá", Timestamp: time.Now().Add(-time.Hour)},
			},
			LastMessage: "olá",
		},
	)
	return s
}

func TestAppendMessage_MirrorsLastMessage(t *testing.T) {
	s := newTestStore(t)

	msg, err := s.AppendMessage("conv-1", model.SenderCustomer, "qual o preço?")
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.Timestamp.IsZero())

	conv, err := s.Conversation("conv-1")
	require.NoError(t, err)
	assert.Equal(t, "qual o preço?", conv.LastMessage)
	assert.Equal(t, msg.Timestamp, conv.LastMessageTime)
	assert.Len(t, conv.Messages, 2)
}

func TestAppendMessage_UnreadRules(t *testing.T) {
	s := newTestStore(t)

	// Customer message to an inactive conversation grows the unread count.
	_, err := s.AppendMessage("conv-1", model.SenderCustomer, "oi?")
	require.NoError(t, err)
	_, err = s.AppendMessage("conv-1", model.SenderCustomer, "alguém aí?")
	require.NoError(t, err)

	conv, err := s.Conversation("conv-1")
	require.NoError(t, err)
	assert.Equal(t, 2, conv.UnreadCount)

	// An agent reply clears it.
	_, err = s.AppendMessage("conv-1", model.SenderAgent, "estou aqui")
	require.NoError(t, err)
	conv, err = s.Conversation("conv-1")
	require.NoError(t, err)
	assert.Equal(t, 0, conv.UnreadCount)
}

func TestAppendMessage_ActiveConversationStaysRead(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Activate("conv-1")
	require.NoError(t, err)

	_, err = s.AppendMessage("conv-1", model.SenderCustomer, "oi")
	require.NoError(t, err)

	conv, err := s.Conversation("conv-1")
	require.NoError(t, err)
	assert.Equal(t, 0, conv.UnreadCount, "messages to the open conversation are read immediately")
}

func TestAppendMessage_UpdatesCustomerLastInteraction(t *testing.T) {
	s := newTestStore(t)

	before, err := s.Customer("cust-1")
	require.NoError(t, err)

	msg, err := s.AppendMessage("conv-1", model.SenderCustomer, "oi")
	require.NoError(t, err)

	after, err := s.Customer("cust-1")
	require.NoError(t, err)
	assert.True(t, after.LastInteraction.After(before.LastInteraction) || after.LastInteraction.Equal(msg.Timestamp))
}

func TestAppendMessage_Errors(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AppendMessage("missing", model.SenderAgent, "oi")
	assert.ErrorIs(t, err, ErrConversationNotFound)

	_, err = s.AppendMessage("conv-1", model.Sender("robot"), "oi")
	assert.ErrorIs(t, err, ErrInvalidSender)
}

func TestActivate_ClearsUnreadAndEmitsEvent(t *testing.T) {
	s := newTestStore(t)

	var events []model.ChangeEvent
	s.Subscribe(func(ev model.ChangeEvent) { events = append(events, ev) })

	_, err := s.AppendMessage("conv-1", model.SenderCustomer, "oi")
	require.NoError(t, err)

	conv, err := s.Activate("conv-1")
	require.NoError(t, err)
	assert.Equal(t, 0, conv.UnreadCount)

	require.Len(t, events, 2)
	assert.Equal(t, model.EventMessageAppended, events[0].Type)
	assert.Equal(t, model.EventConversationRead, events[1].Type)
	assert.Equal(t, "conv-1", events[1].ConversationID)
	assert.Equal(t, "cust-1", events[1].CustomerID)
	assert.NotEmpty(t, events[1].ID)
	assert.False(t, events[1].At.IsZero())
}

func TestActivate_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Activate("missing")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestUpdateFunnelStage_AnyToAny(t *testing.T) {
	s := newTestStore(t)

	stages := []model.FunnelStage{
		model.StageWaitingPayment,
		model.StageNewLead,
		model.StageSold,
		model.StageInNegotiation,
	}
	for _, stage := range stages {
		cust, err := s.UpdateFunnelStage("cust-1", stage)
		require.NoError(t, err)
		assert.Equal(t, stage, cust.FunnelStage)
	}
}

func TestUpdateFunnelStage_Errors(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdateFunnelStage("cust-1", model.FunnelStage("closed_won"))
	assert.ErrorIs(t, err, ErrInvalidStage)

	_, err = s.UpdateFunnelStage("missing", model.StageSold)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestUpdateFunnelStage_EmitsEvent(t *testing.T) {
	s := newTestStore(t)

	var got model.ChangeEvent
	s.Subscribe(func(ev model.ChangeEvent) { got = ev })

	_, err := s.UpdateFunnelStage("cust-1", model.StageSold)
	require.NoError(t, err)

	assert.Equal(t, model.EventStageChanged, got.Type)
	assert.Equal(t, "cust-1", got.CustomerID)
	assert.Equal(t, model.StageSold, got.Stage)
}

func TestReaders_ReturnCopies(t *testing.T) {
	s := newTestStore(t)

	conv, err := s.Conversation("conv-1")
	require.NoError(t, err)
	conv.LastMessage = "tampered"
	conv.Messages[0].Content = "tampered"

	fresh, err := s.Conversation("conv-1")
	require.NoError(t, err)
	assert.Equal(t, "olá", fresh.LastMessage)
	assert.Equal(t, "olá", fresh.Messages[0].Content)

	messages, err := s.Messages("conv-1")
	require.NoError(t, err)
	messages[0].Content = "tampered"
	fresh, err = s.Conversation("conv-1")
	require.NoError(t, err)
	assert.Equal(t, "olá", fresh.Messages[0].Content)
}

func TestConversations_InsertionOrder(t *testing.T) {
	s := newTestStore(t)
	s.Add(
		model.Customer{ID: "cust-2", Name: "Bruno", FunnelStage: model.StageNewLead},
		model.Conversation{ID: "conv-2", CustomerID: "cust-2", CustomerName: "Bruno"},
	)

	list := s.Conversations()
	require.Len(t, list, 2)
	assert.Equal(t, "conv-1", list[0].ID)
	assert.Equal(t, "conv-2", list[1].ID)

	customers := s.Customers()
	require.Len(t, customers, 2)
	assert.Equal(t, "cust-1", customers[0].ID)
	assert.Equal(t, "cust-2", customers[1].ID)
}

func TestSeed_Invariants(t *testing.T) {
	s := New(logger.NewNop())
	s.Seed()

	list := s.Conversations()
	require.Len(t, list, 3)
	assert.Len(t, s.Customers(), 3)

	for _, conv := range list {
		require.NotEmpty(t, conv.Messages, "seeded conversation %s", conv.ID)
		last := conv.Messages[len(conv.Messages)-1]
		assert.Equal(t, last.Content, conv.LastMessage)
		assert.Equal(t, last.Timestamp, conv.LastMessageTime)
		_, err := s.Customer(conv.CustomerID)
		require.NoError(t, err)
	}

	maria, err := s.Conversation("conv-002")
	require.NoError(t, err)
	assert.Equal(t, 2, maria.UnreadCount)
	assert.Equal(t, model.SenderCustomer, maria.Messages[len(maria.Messages)-1].Sender)
}
