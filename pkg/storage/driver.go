// Package storage defines the conversation store contract shared by every
// chatmem backend.
//
// A conversation is an ordered list of messages keyed by a caller-supplied
// conversation ID. Drivers replace a conversation wholesale on SaveAll; there
// is no per-message identity beyond position.
package storage

import (
	"context"

	"github.com/papercomputeco/chatmem/pkg/llm"
)

// Driver persists and retrieves conversation histories.
// Implementations must be safe for concurrent use by multiple goroutines.
type Driver interface {
	// ListConversationIDs returns the ID of every stored conversation, each
	// exactly once, in no particular order. An empty store yields an empty
	// slice and no error.
	ListConversationIDs(ctx context.Context) ([]string, error)

	// FindMessages returns the full history of a conversation in insertion
	// order, or an empty slice if the conversation does not exist. A single
	// undecodable message fails the whole read.
	FindMessages(ctx context.Context, conversationID string) ([]llm.Message, error)

	// SaveAll replaces the history of a conversation with messages. It is
	// never an append. An empty, non-nil messages slice removes the
	// conversation.
	SaveAll(ctx context.Context, conversationID string, messages []*llm.Message) error

	// DeleteConversation removes a conversation. Deleting a conversation
	// that does not exist is not an error.
	DeleteConversation(ctx context.Context, conversationID string) error

	// Close releases the driver's resources. No other method may be called
	// after Close.
	Close() error
}
