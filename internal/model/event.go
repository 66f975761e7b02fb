package model

import (
	"time"
)

// EventType represents the type of store change event.
type EventType string

const (
	EventMessageAppended  EventType = "message_appended"
	EventConversationRead EventType = "conversation_read"
	EventStageChanged     EventType = "stage_changed"
)

// ChangeEvent describes a mutation applied to the conversation store. Events
// are fanned out to in-process subscribers and, when configured, to NATS.
type ChangeEvent struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	ConversationID string      `json:"conversation_id,omitempty"`
	CustomerID     string      `json:"customer_id,omitempty"`
	Message        *Message    `json:"message,omitempty"`
	Stage          FunnelStage `json:"stage,omitempty"`
	At             time.Time   `json:"at"`
}
