// Package inmemory implements storage.Driver with a process-local map. It is
// used by tests and for running chatmem without external services.
package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/papercomputeco/chatmem/pkg/llm"
	"github.com/papercomputeco/chatmem/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu guards conversations
	mu sync.RWMutex

	// conversations maps a conversation ID to its encoded messages, in order.
	// Messages are kept encoded so reads and writes go through the same codec
	// as the networked drivers.
	conversations map[string][]string

	codec llm.Codec
}

var _ storage.Driver = (*Driver)(nil)

// Option configures a Driver.
type Option func(*Driver)

// WithCodec replaces the default JSON message codec.
func WithCodec(codec llm.Codec) Option {
	return func(d *Driver) {
		if codec != nil {
			d.codec = codec
		}
	}
}

// NewDriver creates a new, empty in-memory driver.
func NewDriver(opts ...Option) *Driver {
	d := &Driver{
		conversations: make(map[string][]string),
		codec:         llm.NewJSONCodec(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ListConversationIDs returns the stored conversation IDs in lexical order.
func (d *Driver) ListConversationIDs(_ context.Context) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]string, 0, len(d.conversations))
	for id := range d.conversations {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// FindMessages returns the history of a conversation, oldest first.
func (d *Driver) FindMessages(_ context.Context, conversationID string) ([]llm.Message, error) {
	if err := storage.ValidateConversationID(conversationID); err != nil {
		return nil, err
	}

	d.mu.RLock()
	raw := d.conversations[conversationID]
	d.mu.RUnlock()

	messages := make([]llm.Message, 0, len(raw))
	for i, data := range raw {
		msg, err := d.codec.Decode(data)
		if err != nil {
			return nil, &storage.SerializationError{Op: "decode", ConversationID: conversationID, Index: i, Err: err}
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// SaveAll replaces the history of a conversation. Every message is encoded
// before the map is touched, so an encode failure leaves the previous
// history in place.
func (d *Driver) SaveAll(_ context.Context, conversationID string, messages []*llm.Message) error {
	if err := storage.ValidateSaveAll(conversationID, messages); err != nil {
		return err
	}

	encoded := make([]string, 0, len(messages))
	for i, msg := range messages {
		data, err := d.codec.Encode(msg)
		if err != nil {
			return &storage.SerializationError{Op: "encode", ConversationID: conversationID, Index: i, Err: err}
		}
		encoded = append(encoded, data)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(encoded) == 0 {
		delete(d.conversations, conversationID)
		return nil
	}
	d.conversations[conversationID] = encoded
	return nil
}

// DeleteConversation removes a conversation if present.
func (d *Driver) DeleteConversation(_ context.Context, conversationID string) error {
	if err := storage.ValidateConversationID(conversationID); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.conversations, conversationID)
	return nil
}

// Count returns the number of stored conversations.
func (d *Driver) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.conversations)
}

// Raw returns a copy of the encoded messages of a conversation.
func (d *Driver) Raw(conversationID string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.conversations[conversationID])
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}
