// Package nop provides a publisher that drops every event.
package nop

import (
	"context"

	"github.com/papercomputeco/chatmem/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

var _ eventstream.Publisher = (*Publisher)(nil)

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishConversation validates input and otherwise does nothing.
func (p *Publisher) PublishConversation(_ context.Context, event *eventstream.ConversationEvent) error {
	if event == nil {
		return eventstream.ErrNilConversationEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
