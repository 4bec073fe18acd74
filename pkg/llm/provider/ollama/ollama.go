// Package ollama converts Ollama /api/chat payloads.
package ollama

import (
	"encoding/json"
	"fmt"

	"github.com/papercomputeco/chatmem/pkg/llm"
)

// provider converts Ollama chat requests and responses.
type provider struct{}

func New() *provider { return &provider{} }

func (o *provider) Name() string {
	return "ollama"
}

func (o *provider) CanHandle(payload []byte) bool {
	var probe ollamaPayload
	if err := json.Unmarshal(payload, &probe); err != nil {
		return false
	}

	// Check for Ollama-specific request fields
	if len(probe.KeepAlive) > 0 || len(probe.Options) > 0 {
		return true
	}

	// Check for Ollama-specific response fields
	return probe.Message != nil && (probe.Context != nil || probe.TotalDuration > 0 || probe.EvalCount > 0)
}

func (o *provider) ParseMessages(payload []byte) ([]llm.Message, error) {
	var p ollamaPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}

	source := p.Messages
	if len(source) == 0 && p.Message != nil {
		source = []ollamaMessage{*p.Message}
	}

	messages := make([]llm.Message, 0, len(source))
	for i, msg := range source {
		converted, err := convertMessage(msg)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		messages = append(messages, converted)
	}
	return messages, nil
}

func convertMessage(msg ollamaMessage) (llm.Message, error) {
	switch msg.Role {
	case "system":
		return llm.NewSystemMessage(msg.Content), nil

	case "user":
		m := llm.NewUserMessage(msg.Content)
		m.Media = images(msg.Images)
		return m, nil

	case "assistant":
		m := llm.NewAssistantMessage(msg.Content)
		m.Media = images(msg.Images)
		for _, tc := range msg.ToolCalls {
			args := string(tc.Function.Arguments)
			if args == "" || args == "null" {
				args = "{}"
			}
			m.ToolCalls = append(m.ToolCalls, llm.ToolCall{
				ID:        tc.ID,
				Type:      "function",
				Name:      tc.Function.Name,
				Arguments: args,
			})
		}
		return m, nil

	case "tool":
		return llm.NewToolResponseMessage(llm.ToolResponse{
			Name:         msg.ToolName,
			ResponseData: msg.Content,
		}), nil

	default:
		return llm.Message{}, fmt.Errorf("%w: role %q", llm.ErrUnknownMessageType, msg.Role)
	}
}

// images wraps Ollama's raw base64 images. Ollama does not send a MIME type.
func images(data []string) []llm.Media {
	if len(data) == 0 {
		return nil
	}
	media := make([]llm.Media, 0, len(data))
	for _, d := range data {
		media = append(media, llm.Media{MimeType: "image/*", Data: d})
	}
	return media
}
