package openai

import "encoding/json"

// openaiPayload covers both the Chat Completions request and response shapes.
type openaiPayload struct {
	Model    string          `json:"model"`
	Object   string          `json:"object"`
	Messages []openaiMessage `json:"messages"`
	Choices  []struct {
		Index        int           `json:"index"`
		Message      openaiMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
}

// openaiMessage represents a message in OpenAI's format.
type openaiMessage struct {
	Role string `json:"role"`

	// Union type: string or []openaiContentPart
	Content json.RawMessage `json:"content"`

	Name       string           `json:"name,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	ToolCalls  []openaiToolCall `json:"tool_calls,omitempty"`
}

type openaiToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// openaiContentPart represents a content part for multimodal messages.
type openaiContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL    string `json:"url"`
		Detail string `json:"detail,omitempty"`
	} `json:"image_url,omitempty"`
}
