// Package bus provides event bus implementations for broadcasting
// leaderboard changes to interested components.
package bus

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for event bus implementations.
type Bus interface {
	// Publish publishes an event to a topic.
	Publish(ctx context.Context, topic string, event Event) error

	// Subscribe subscribes to events on a topic.
	Subscribe(ctx context.Context, topic string, handler Handler) error

	// Close closes the bus and releases resources.
	Close() error
}

// Event represents a bus event.
type Event struct {
	// ID is the unique event identifier.
	ID string `json:"id"`

	// Type is the event type, matching the topic it is published on.
	Type string `json:"type"`

	// Source is the component that generated the event.
	Source string `json:"source"`

	// Timestamp is when the event was created.
	Timestamp int64 `json:"timestamp"`

	// Payload contains the event data.
	Payload any `json:"payload"`
}

// NewEvent creates an event with a fresh id and the current time.
func NewEvent(eventType, source string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UnixMilli(),
		Payload:   payload,
	}
}

// Topics for leaderboard events.
const (
	// TopicEvaluationUpdated fires after any change to the evaluation
	// collection: manual edits, seed passes, or remote reconciliation.
	TopicEvaluationUpdated = "evaluation.updated"

	// TopicSeedCompleted fires after a seeding pass finishes.
	TopicSeedCompleted = "seed.completed"

	// TopicSyncCompleted fires after a reconciliation with the remote
	// store completes.
	TopicSyncCompleted = "sync.completed"
)
