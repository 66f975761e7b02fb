package model

import (
	"time"
)

// Conversation is the message thread with a single customer.
//
// LastMessage and LastMessageTime always mirror the tail of Messages. The
// conversation is owned by the store and mutated only through its explicit
// append and mark-read operations.
type Conversation struct {
	ID              string    `json:"id"`
	CustomerID      string    `json:"customer_id"`
	CustomerName    string    `json:"customer_name"`
	Messages        []Message `json:"messages"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	UnreadCount     int       `json:"unread_count"`
}

// ListConversationsResponse is the response for listing conversations.
type ListConversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
	Total         int            `json:"total"`
}
