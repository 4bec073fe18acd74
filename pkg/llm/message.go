// Package llm holds the provider-agnostic chat message model persisted by
// chatmem, and the codec that turns messages into their stored string form.
package llm

import "strings"

// MessageType is the discriminator for the closed set of message kinds.
type MessageType string

const (
	MessageTypeUser      MessageType = "USER"
	MessageTypeAssistant MessageType = "ASSISTANT"
	MessageTypeSystem    MessageType = "SYSTEM"
	MessageTypeTool      MessageType = "TOOL"
)

// Conversational roles reported by Message.Role.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// Valid reports whether t is one of the known message kinds.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeUser, MessageTypeAssistant, MessageTypeSystem, MessageTypeTool:
		return true
	default:
		return false
	}
}

// Role returns the conversational role for the kind, or "" for unknown kinds.
func (t MessageType) Role() string {
	switch t {
	case MessageTypeUser:
		return RoleUser
	case MessageTypeAssistant:
		return RoleAssistant
	case MessageTypeSystem:
		return RoleSystem
	case MessageTypeTool:
		return RoleTool
	default:
		return ""
	}
}

// MessageTypeForRole maps a role name ("user", "assistant", ...) to its kind.
// The lookup is case-insensitive and also accepts the discriminator itself.
func MessageTypeForRole(role string) (MessageType, bool) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleUser:
		return MessageTypeUser, true
	case RoleAssistant:
		return MessageTypeAssistant, true
	case RoleSystem:
		return MessageTypeSystem, true
	case RoleTool:
		return MessageTypeTool, true
	default:
		return "", false
	}
}

// Message is a single chat message. Type selects which structured fields are
// meaningful:
//
//	USER       Text, Metadata, Media
//	ASSISTANT  Text, Metadata, Media, ToolCalls
//	SYSTEM     Text, Metadata
//	TOOL       Metadata, ToolResponses
//
// Encoding a message that sets a field outside its kind fails.
type Message struct {
	Type          MessageType    `json:"messageType"`
	Text          string         `json:"text,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Media         []Media        `json:"media,omitempty"`
	ToolCalls     []ToolCall     `json:"toolCalls,omitempty"`
	ToolResponses []ToolResponse `json:"toolResponses,omitempty"`
}

// Media is an attachment on a user or assistant message. Data holds either a
// URL or a base64 payload.
type Media struct {
	ID       string `json:"id,omitempty"`
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// ToolCall is an assistant's request to execute a tool.
type ToolCall struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolResponse is the result of a tool execution, referencing ToolCall.ID.
type ToolResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ResponseData string `json:"responseData"`
}

// NewUserMessage creates a user message with the given text.
func NewUserMessage(text string) Message {
	return Message{Type: MessageTypeUser, Text: text}
}

// NewAssistantMessage creates an assistant message, optionally requesting tools.
func NewAssistantMessage(text string, calls ...ToolCall) Message {
	return Message{Type: MessageTypeAssistant, Text: text, ToolCalls: calls}
}

// NewSystemMessage creates a system message with the given text.
func NewSystemMessage(text string) Message {
	return Message{Type: MessageTypeSystem, Text: text}
}

// NewToolResponseMessage creates a tool message carrying one or more results.
func NewToolResponseMessage(responses ...ToolResponse) Message {
	return Message{Type: MessageTypeTool, ToolResponses: responses}
}

// NewTextMessage creates a simple text message for the given role. Unknown
// roles produce a message with an empty Type, which the codec rejects.
func NewTextMessage(role, text string) Message {
	t, _ := MessageTypeForRole(role)
	if t == MessageTypeTool {
		return NewToolResponseMessage(ToolResponse{ResponseData: text})
	}
	return Message{Type: t, Text: text}
}

// Role returns the conversational role of the message.
func (m *Message) Role() string {
	return m.Type.Role()
}

// GetText returns the message text. Tool messages have no text of their own,
// so their response payloads are concatenated instead.
func (m *Message) GetText() string {
	if m.Type != MessageTypeTool {
		return m.Text
	}

	var b strings.Builder
	for _, r := range m.ToolResponses {
		b.WriteString(r.ResponseData)
	}
	return b.String()
}
