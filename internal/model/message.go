// Package model defines data structures for the sales chat platform.
package model

import (
	"time"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderCustomer Sender = "customer"
	SenderAgent    Sender = "agent"
)

// Valid reports whether the sender is one of the known values.
func (s Sender) Valid() bool {
	return s == SenderCustomer || s == SenderAgent
}

// Message is a single chat message. Messages are immutable once created and
// ordered by append order within a conversation.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SendMessageRequest is the request to append a message to a conversation.
// Sender defaults to the agent when omitted.
type SendMessageRequest struct {
	Sender  Sender `json:"sender,omitempty"`
	Content string `json:"content"`
}

// SendMessageResponse is the response after appending a message.
type SendMessageResponse struct {
	Message      *Message      `json:"message"`
	Conversation *Conversation `json:"conversation"`
}
