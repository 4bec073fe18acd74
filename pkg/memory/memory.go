// Package memory provides message-window chat memory on top of any
// storage.Driver.
//
// A Window keeps at most MaxMessages messages per conversation. Appending a
// system message that is not already stored replaces the earlier system
// messages, and when the window overflows the oldest non-system messages are
// evicted first:
//
//	[memory]
//	max_messages = 20
package memory

import (
	"context"
	"log/slog"

	"github.com/papercomputeco/chatmem/pkg/llm"
	"github.com/papercomputeco/chatmem/pkg/logger"
	"github.com/papercomputeco/chatmem/pkg/storage"
)

// DefaultMaxMessages is the window size used when none is configured.
const DefaultMaxMessages = 20

// Window is a chat memory bounded by message count.
type Window struct {
	driver      storage.Driver
	maxMessages int
	logger      *slog.Logger
	locks       *keyedMutex
}

// Option configures a Window.
type Option func(*Window)

// WithMaxMessages sets the window size.
func WithMaxMessages(n int) Option {
	return func(w *Window) {
		w.maxMessages = n
	}
}

// WithLogger sets the logger used for eviction tracing.
func WithLogger(l *slog.Logger) Option {
	return func(w *Window) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWindow creates a window memory persisting through driver.
func NewWindow(driver storage.Driver, opts ...Option) (*Window, error) {
	w := &Window{
		driver:      driver,
		maxMessages: DefaultMaxMessages,
		logger:      logger.Nop(),
		locks:       newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.maxMessages < 1 {
		return nil, ErrInvalidMaxMessages
	}
	return w, nil
}

// MaxMessages returns the window size.
func (w *Window) MaxMessages() int {
	return w.maxMessages
}

// Add appends messages to a conversation, applies the window, and stores the
// result. It returns the stored window. Concurrent Adds for the same
// conversation within this process are serialized; writers in other
// processes are not coordinated.
func (w *Window) Add(ctx context.Context, conversationID string, messages ...llm.Message) ([]llm.Message, error) {
	if err := storage.ValidateConversationID(conversationID); err != nil {
		return nil, err
	}

	unlock := w.locks.Lock(conversationID)
	defer unlock()

	stored, err := w.driver.FindMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	window, evicted := apply(stored, messages, w.maxMessages)
	if evicted > 0 {
		w.logger.Debug("evicted messages from window",
			"conversation_id", conversationID,
			"evicted", evicted,
			"max_messages", w.maxMessages,
		)
	}

	ptrs := make([]*llm.Message, len(window))
	for i := range window {
		ptrs[i] = &window[i]
	}
	if err := w.driver.SaveAll(ctx, conversationID, ptrs); err != nil {
		return nil, err
	}

	return window, nil
}

// Get returns the stored window of a conversation.
func (w *Window) Get(ctx context.Context, conversationID string) ([]llm.Message, error) {
	return w.driver.FindMessages(ctx, conversationID)
}

// Clear removes a conversation.
func (w *Window) Clear(ctx context.Context, conversationID string) error {
	if err := storage.ValidateConversationID(conversationID); err != nil {
		return err
	}

	unlock := w.locks.Lock(conversationID)
	defer unlock()

	return w.driver.DeleteConversation(ctx, conversationID)
}
