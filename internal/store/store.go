// Package store owns the in-memory conversation and customer state. It is the
// single writer: every mutation goes through an explicit operation here, and
// readers get copies.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tooni-app/salesdesk/internal/model"
	"github.com/tooni-app/salesdesk/pkg/logger"
	"github.com/tooni-app/salesdesk/pkg/metrics"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrInvalidStage         = errors.New("invalid funnel stage")
	ErrInvalidSender        = errors.New("invalid sender")
)

// Subscriber receives store change events. Subscribers are called
// synchronously after the mutation has been applied, outside the store lock.
type Subscriber func(model.ChangeEvent)

// Store holds all conversations and customers for the session, plus the
// active conversation selection.
type Store struct {
	logger *logger.Logger

	mu            sync.RWMutex
	conversations map[string]*model.Conversation
	customers     map[string]*model.Customer
	order         []string
	activeID      string
	subscribers   []Subscriber
}

// New creates an empty store.
func New(log *logger.Logger) *Store {
	return &Store{
		logger:        log,
		conversations: make(map[string]*model.Conversation),
		customers:     make(map[string]*model.Customer),
	}
}

// Subscribe registers a change subscriber. Not safe to call concurrently with
// mutations; wire subscribers during startup.
func (s *Store) Subscribe(fn Subscriber) {
	s.subscribers = append(s.subscribers, fn)
}

// Add inserts a customer and their conversation. Used by seeding.
func (s *Store) Add(customer model.Customer, conversation model.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := customer
	s.customers[c.ID] = &c

	conv := cloneConversation(&conversation)
	s.conversations[conv.ID] = conv
	s.order = append(s.order, conv.ID)
}

// AppendMessage appends a message to a conversation and updates the mirrored
// conversation metadata: LastMessage/LastMessageTime always track the tail,
// the unread count resets on agent sends (and on appends to the active
// conversation) and grows on customer messages arriving elsewhere.
func (s *Store) AppendMessage(conversationID string, sender model.Sender, content string) (*model.Message, error) {
	if !sender.Valid() {
		return nil, ErrInvalidSender
	}

	msg := model.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	conv, ok := s.conversations[conversationID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrConversationNotFound
	}

	conv.Messages = append(conv.Messages, msg)
	conv.LastMessage = msg.Content
	conv.LastMessageTime = msg.Timestamp

	if sender == model.SenderAgent || conversationID == s.activeID {
		conv.UnreadCount = 0
	} else {
		conv.UnreadCount++
	}

	if cust, ok := s.customers[conv.CustomerID]; ok {
		cust.LastInteraction = msg.Timestamp
	}
	customerID := conv.CustomerID
	s.mu.Unlock()

	metrics.MessagesTotal.WithLabelValues(string(sender)).Inc()
	s.notify(model.ChangeEvent{
		Type:           model.EventMessageAppended,
		ConversationID: conversationID,
		CustomerID:     customerID,
		Message:        &msg,
	})

	return &msg, nil
}

// Activate makes a conversation the active selection and clears its unread
// count.
func (s *Store) Activate(conversationID string) (*model.Conversation, error) {
	s.mu.Lock()
	conv, ok := s.conversations[conversationID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrConversationNotFound
	}

	s.activeID = conversationID
	conv.UnreadCount = 0
	out := cloneConversation(conv)
	customerID := conv.CustomerID
	s.mu.Unlock()

	s.notify(model.ChangeEvent{
		Type:           model.EventConversationRead,
		ConversationID: conversationID,
		CustomerID:     customerID,
	})

	return out, nil
}

// UpdateFunnelStage moves a customer to another stage. Any stage is reachable
// from any other.
func (s *Store) UpdateFunnelStage(customerID string, stage model.FunnelStage) (*model.Customer, error) {
	if !stage.Valid() {
		return nil, ErrInvalidStage
	}

	s.mu.Lock()
	cust, ok := s.customers[customerID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrCustomerNotFound
	}

	cust.FunnelStage = stage
	cust.LastInteraction = time.Now()
	out := *cust
	s.mu.Unlock()

	metrics.StageChangesTotal.WithLabelValues(string(stage)).Inc()
	s.notify(model.ChangeEvent{
		Type:       model.EventStageChanged,
		CustomerID: customerID,
		Stage:      stage,
	})

	return &out, nil
}

// Conversations lists all conversations in insertion order.
func (s *Store) Conversations() []model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Conversation, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *cloneConversation(s.conversations[id]))
	}
	return out
}

// Conversation returns one conversation by ID.
func (s *Store) Conversation(id string) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return cloneConversation(conv), nil
}

// Messages returns a copy of a conversation's message list.
func (s *Store) Messages(conversationID string) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return append([]model.Message(nil), conv.Messages...), nil
}

// Customers lists all customers, ordered by their conversation order.
func (s *Store) Customers() []model.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Customer, 0, len(s.customers))
	for _, id := range s.order {
		if conv, ok := s.conversations[id]; ok {
			if cust, ok := s.customers[conv.CustomerID]; ok {
				out = append(out, *cust)
			}
		}
	}
	return out
}

// Customer returns one customer by ID.
func (s *Store) Customer(id string) (*model.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cust, ok := s.customers[id]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	out := *cust
	return &out, nil
}

func (s *Store) notify(ev model.ChangeEvent) {
	ev.ID = uuid.Must(uuid.NewV7()).String()
	ev.At = time.Now()
	for _, fn := range s.subscribers {
		fn(ev)
	}
}

func cloneConversation(conv *model.Conversation) *model.Conversation {
	out := *conv
	out.Messages = append([]model.Message(nil), conv.Messages...)
	return &out
}
