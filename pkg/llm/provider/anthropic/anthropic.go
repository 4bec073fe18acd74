// Package anthropic converts Anthropic Messages API payloads.
package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/papercomputeco/chatmem/pkg/llm"
)

// provider converts Anthropic Messages API requests and responses.
type provider struct{}

func New() *provider { return &provider{} }

func (p *provider) Name() string {
	return "anthropic"
}

func (p *provider) CanHandle(payload []byte) bool {
	var probe struct {
		Model     string          `json:"model"`
		MaxTokens *int            `json:"max_tokens"`
		System    json.RawMessage `json:"system"`

		// Response-specific fields
		Type       string `json:"type"`
		StopReason string `json:"stop_reason"`
	}

	if err := json.Unmarshal(payload, &probe); err != nil {
		return false
	}

	// Check for Claude model names
	if strings.HasPrefix(probe.Model, "claude-") {
		return true
	}

	// Check for Anthropic response structure
	if probe.Type == "message" && probe.StopReason != "" {
		return true
	}

	// max_tokens is required for Anthropic, optional for others
	// combined with a top-level system field is a strong signal
	return probe.MaxTokens != nil && len(probe.System) > 0
}

func (p *provider) ParseMessages(payload []byte) ([]llm.Message, error) {
	var req anthropicPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, err
	}

	// A response carries its reply as top-level content blocks.
	if req.Type == "message" && len(req.Messages) == 0 {
		return convertBlocks(req.Role, req.Content)
	}

	var messages []llm.Message

	if len(req.System) > 0 {
		text, err := flattenText(req.System)
		if err != nil {
			return nil, fmt.Errorf("system: %w", err)
		}
		if text != "" {
			messages = append(messages, llm.NewSystemMessage(text))
		}
	}

	for i, msg := range req.Messages {
		blocks, err := parseBlocks(msg.Content)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		converted, err := convertBlocks(msg.Role, blocks)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		messages = append(messages, converted...)
	}

	return messages, nil
}

// convertBlocks turns one Anthropic message into chatmem messages. Tool
// results travel inside user turns, so they are split out into tool messages
// ahead of any remaining user text.
func convertBlocks(role string, blocks []anthropicContentBlock) ([]llm.Message, error) {
	var (
		texts     []string
		media     []llm.Media
		calls     []llm.ToolCall
		responses []llm.ToolResponse
	)

	for _, block := range blocks {
		switch block.Type {
		case "text":
			texts = append(texts, block.Text)
		case "image":
			if block.Source != nil {
				media = append(media, sourceMedia(block.Source))
			}
		case "tool_use":
			args := string(block.Input)
			if args == "" {
				args = "{}"
			}
			calls = append(calls, llm.ToolCall{ID: block.ID, Type: "function", Name: block.Name, Arguments: args})
		case "tool_result":
			data, err := flattenText(block.Content)
			if err != nil {
				return nil, fmt.Errorf("tool_result %s: %w", block.ToolUseID, err)
			}
			responses = append(responses, llm.ToolResponse{ID: block.ToolUseID, ResponseData: data})
		}
	}

	text := strings.Join(texts, "\n")

	switch role {
	case "assistant":
		m := llm.NewAssistantMessage(text, calls...)
		m.Media = media
		return []llm.Message{m}, nil

	case "user":
		var out []llm.Message
		if len(responses) > 0 {
			out = append(out, llm.NewToolResponseMessage(responses...))
		}
		if text != "" || len(media) > 0 || len(responses) == 0 {
			m := llm.NewUserMessage(text)
			m.Media = media
			out = append(out, m)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: role %q", llm.ErrUnknownMessageType, role)
	}
}

func sourceMedia(src *anthropicSource) llm.Media {
	if src.Type == "url" {
		return llm.MediaFromURL(src.URL)
	}
	return llm.Media{MimeType: src.MediaType, Data: src.Data}
}

// parseBlocks reads string or block-list content as a list of blocks.
func parseBlocks(raw json.RawMessage) ([]anthropicContentBlock, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []anthropicContentBlock{{Type: "text", Text: s}}, nil
	}

	var blocks []anthropicContentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, fmt.Errorf("content is neither a string nor a list of blocks: %w", err)
	}
	return blocks, nil
}

// flattenText joins the text of string or block-list content.
func flattenText(raw json.RawMessage) (string, error) {
	blocks, err := parseBlocks(raw)
	if err != nil {
		return "", err
	}

	texts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block.Type == "text" {
			texts = append(texts, block.Text)
		}
	}
	return strings.Join(texts, "\n"), nil
}
