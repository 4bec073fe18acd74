// Package eventstream publishes conversation change events to an event
// stream backend.
package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeConversationSaved is emitted after a conversation is replaced
	// or appended to.
	EventTypeConversationSaved = "chatmem.conversation.saved"

	// EventTypeConversationDeleted is emitted after a conversation is deleted.
	EventTypeConversationDeleted = "chatmem.conversation.deleted"
)

// ConversationEvent is a transport-neutral event payload describing a
// change to a stored conversation.
type ConversationEvent struct {
	SchemaVersion  int       `json:"schema_version"`
	EventType      string    `json:"event_type"`
	EventID        string    `json:"event_id"`
	EmittedAt      time.Time `json:"emitted_at"`
	ConversationID string    `json:"conversation_id"`
	MessageCount   int       `json:"message_count"`
}

// NewConversationEvent stamps a new event with a random ID and the current time.
func NewConversationEvent(eventType, conversationID string, messageCount int) *ConversationEvent {
	return &ConversationEvent{
		SchemaVersion:  SchemaVersionV1,
		EventType:      eventType,
		EventID:        uuid.NewString(),
		EmittedAt:      time.Now().UTC(),
		ConversationID: conversationID,
		MessageCount:   messageCount,
	}
}
