// Package openai converts OpenAI Chat Completions payloads.
package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/papercomputeco/chatmem/pkg/llm"
)

// provider converts OpenAI Chat Completions requests and responses.
type provider struct{}

func New() *provider { return &provider{} }

func (o *provider) Name() string {
	return "openai"
}

var modelPrefixes = []string{"gpt-", "o1", "o3", "o4", "chatgpt-"}

func (o *provider) CanHandle(payload []byte) bool {
	var probe struct {
		Model  string `json:"model"`
		Object string `json:"object"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return false
	}

	if probe.Object == "chat.completion" {
		return true
	}
	for _, prefix := range modelPrefixes {
		if strings.HasPrefix(probe.Model, prefix) {
			return true
		}
	}
	return false
}

func (o *provider) ParseMessages(payload []byte) ([]llm.Message, error) {
	var p openaiPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}

	source := p.Messages
	if len(source) == 0 && len(p.Choices) > 0 {
		source = []openaiMessage{p.Choices[0].Message}
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

func convertMessage(msg openaiMessage) (llm.Message, error) {
	text, media, err := parseContent(msg.Content)
	if err != nil {
		return llm.Message{}, err
	}

	switch msg.Role {
	case "system", "developer":
		return llm.NewSystemMessage(text), nil

	case "user":
		m := llm.NewUserMessage(text)
		m.Media = media
		return m, nil

	case "assistant":
		m := llm.NewAssistantMessage(text)
		m.Media = media
		for _, tc := range msg.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, llm.ToolCall{
				ID:        tc.ID,
				Type:      tc.Type,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		return m, nil

	case "tool":
		return llm.NewToolResponseMessage(llm.ToolResponse{
			ID:           msg.ToolCallID,
			Name:         msg.Name,
			ResponseData: text,
		}), nil

	default:
		return llm.Message{}, fmt.Errorf("%w: role %q", llm.ErrUnknownMessageType, msg.Role)
	}
}

// parseContent flattens string or multipart content into text and image
// attachments. Text parts are joined with newlines.
func parseContent(raw json.RawMessage) (string, []llm.Media, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil, nil
	}

	var parts []openaiContentPart
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", nil, fmt.Errorf("content is neither a string nor a list of parts: %w", err)
	}

	var (
		texts []string
		media []llm.Media
	)
	for _, part := range parts {
		switch {
		case part.ImageURL != nil:
			media = append(media, llm.MediaFromURL(part.ImageURL.URL))
		case part.Text != "":
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n"), media, nil
}
