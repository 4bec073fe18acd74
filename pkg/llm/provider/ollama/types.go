package ollama

import "encoding/json"

// ollamaPayload covers both the /api/chat request and response shapes.
type ollamaPayload struct {
	Model     string          `json:"model"`
	Messages  []ollamaMessage `json:"messages"`
	KeepAlive json.RawMessage `json:"keep_alive,omitempty"`
	Options   json.RawMessage `json:"options,omitempty"`

	// Response-specific fields
	Message       *ollamaMessage `json:"message,omitempty"`
	Done          bool           `json:"done"`
	Context       []int          `json:"context,omitempty"`
	TotalDuration int64          `json:"total_duration,omitempty"`
	EvalCount     int            `json:"eval_count,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`

	// Base64-encoded images
	Images []string `json:"images,omitempty"`

	// Tool calls (assistant requesting tool execution)
	ToolCalls []ollamaToolCall `json:"tool_calls,omitempty"`

	// Set on tool messages
	ToolName string `json:"tool_name,omitempty"`
}

type ollamaToolCall struct {
	ID       string `json:"id"`
	Function struct {
		Index     int             `json:"index,omitempty"`
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}
