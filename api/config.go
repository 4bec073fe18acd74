// Package api provides an HTTP API server for reading and managing stored
// conversations.
package api

import "github.com/papercomputeco/chatmem/pkg/eventstream"

// EventQueue accepts conversation events for asynchronous publishing.
// *worker.Pool satisfies it.
type EventQueue interface {
	Enqueue(event *eventstream.ConversationEvent) bool
}

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// Events receives an event after every successful write. Optional.
	Events EventQueue

	// DisableMCP leaves the /mcp endpoint unmounted.
	DisableMCP bool
}
