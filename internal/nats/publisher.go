package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/tooni-app/salesdesk/internal/model"
)

const (
	// StreamName is the name of the CRM events stream.
	StreamName = "CRM_EVENTS"

	// SubjectPrefix is the prefix for all CRM event subjects.
	SubjectPrefix = "crm"
)

// Publisher publishes store change events to JetStream.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher over an established client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// EnsureStream ensures the CRM events stream exists.
func (p *Publisher) EnsureStream(ctx context.Context) error {
	js := p.client.JetStream()

	if _, err := js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Dashboard conversation and funnel change events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// EventSubject returns the subject for a change event. Events without a
// conversation (funnel stage changes) are keyed by customer.
func EventSubject(ev model.ChangeEvent) string {
	scope := ev.ConversationID
	if scope == "" {
		scope = ev.CustomerID
	}
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, scope, ev.Type)
}

// Publish publishes one change event.
func (p *Publisher) Publish(ctx context.Context, ev model.ChangeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.client.JetStream().Publish(ctx, EventSubject(ev), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
