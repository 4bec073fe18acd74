package anthropic

import "encoding/json"

// anthropicPayload covers both the Messages API request and response shapes.
type anthropicPayload struct {
	Model     string             `json:"model"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens *int               `json:"max_tokens"`

	// Union type: string or []anthropicContentBlock
	System json.RawMessage `json:"system,omitempty"`

	// Response-specific fields
	Type       string                  `json:"type"`
	Role       string                  `json:"role"`
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
}

// anthropicMessage represents a message in Anthropic's format.
type anthropicMessage struct {
	Role string `json:"role"`

	// Union type: string or []anthropicContentBlock
	Content json.RawMessage `json:"content"`
}

// anthropicContentBlock represents a content block in Anthropic's format.
type anthropicContentBlock struct {
	Type      string           `json:"type"`
	Text      string           `json:"text,omitempty"`
	Source    *anthropicSource `json:"source,omitempty"`
	ID        string           `json:"id,omitempty"`
	Name      string           `json:"name,omitempty"`
	Input     json.RawMessage  `json:"input,omitempty"`
	ToolUseID string           `json:"tool_use_id,omitempty"`

	// Union type on tool_result blocks: string or []anthropicContentBlock
	Content json.RawMessage `json:"content,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
	URL       string `json:"url"`
}
