package provider

import (
	"errors"
	"fmt"

	"github.com/papercomputeco/chatmem/pkg/llm"
	"github.com/papercomputeco/chatmem/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/chatmem/pkg/llm/provider/ollama"
	"github.com/papercomputeco/chatmem/pkg/llm/provider/openai"
)

// ErrUnknownFormat is returned when no registered provider recognizes a payload.
var ErrUnknownFormat = errors.New("could not detect payload format")

// Detector manages provider detection by checking registered providers in order.
type Detector struct {
	providers []Provider
}

// NewDetector creates a new Detector with the default set of providers.
// Providers are checked in order: Anthropic, OpenAI, then Ollama.
func NewDetector() *Detector {
	return &Detector{
		providers: []Provider{
			anthropic.New(),
			openai.New(),
			ollama.New(),
		},
	}
}

// Detect returns the first provider that reports it can handle the payload.
func (d *Detector) Detect(payload []byte) (Provider, error) {
	for _, p := range d.providers {
		if p.CanHandle(payload) {
			return p, nil
		}
	}
	return nil, ErrUnknownFormat
}

// ParseMessages detects the provider and converts the payload in one call.
func (d *Detector) ParseMessages(payload []byte) ([]llm.Message, error) {
	p, err := d.Detect(payload)
	if err != nil {
		return nil, err
	}
	return Parse(p, payload)
}

// Parse runs p over payload, validates every message it produces, and
// rejects payloads with no messages.
func Parse(p Provider, payload []byte) ([]llm.Message, error) {
	messages, err := p.ParseMessages(payload)
	if err != nil {
		return nil, fmt.Errorf("parsing %s payload: %w", p.Name(), err)
	}
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}
	for i := range messages {
		if err := llm.Validate(&messages[i]); err != nil {
			return nil, fmt.Errorf("%s message %d: %w", p.Name(), i, err)
		}
	}
	return messages, nil
}
