package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the name of the conversations stream.
	StreamName = "CONVERSATIONS"

	// SubjectPrefix is the prefix for all conversation subjects.
	SubjectPrefix = "conv"
)

// Type discriminates conversation events.
type Type string

const (
	TypeExchange Type = "exchange"
	TypeReset    Type = "reset"
)

// Event is one conversation audit record.
type Event struct {
	ID        string    `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Type      Type      `json:"type"`
	Turns     int       `json:"turns,omitempty"`
	ToolCalls int       `json:"tool_calls,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher records conversation events for downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// StreamPublisher publishes events to a JetStream stream.
type StreamPublisher struct {
	client *Client
}

// NewStreamPublisher creates a publisher and ensures the stream exists.
func NewStreamPublisher(ctx context.Context, client *Client) (*StreamPublisher, error) {
	js := client.js

	if _, err := js.Stream(ctx, StreamName); err != nil {
		_, err = js.CreateStream(ctx, jetstream.StreamConfig{
			Name:        StreamName,
			Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
			Retention:   jetstream.LimitsPolicy,
			MaxAge:      90 * 24 * time.Hour,
			Storage:     jetstream.FileStorage,
			Replicas:    1,
			Description: "Conversation exchange and reset events",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
	}

	return &StreamPublisher{client: client}, nil
}

// Publish sends the event to JetStream. The event id is assigned here.
func (p *StreamPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.ID == "" {
		ev.ID = uuid.Must(uuid.NewV7()).String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := fmt.Sprintf("%s.%d.%s", SubjectPrefix, ev.ChatID, ev.Type)
	if _, err := p.client.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// NoopPublisher drops all events. Used when NATS is not configured.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(ctx context.Context, ev Event) error { return nil }
