// Package provider converts provider-native chat payloads into chatmem
// messages so transcripts captured from an LLM API can be stored as-is.
package provider

import (
	"errors"

	"github.com/papercomputeco/chatmem/pkg/llm"
)

// ErrNoMessages is returned when a payload parses but carries no messages.
var ErrNoMessages = errors.New("payload contains no messages")

// Provider defines how one LLM API format is detected and converted.
type Provider interface {
	// Name returns the canonical provider name (e.g. "anthropic", "openai", "ollama").
	Name() string

	// CanHandle returns true if the payload appears to be for this provider.
	// Implementations check for provider-specific markers such as field
	// names, model name patterns, or response structure.
	CanHandle(payload []byte) bool

	// ParseMessages converts a chat request (its message history) or a chat
	// response (its reply) into messages, oldest first.
	ParseMessages(payload []byte) ([]llm.Message, error)
}
