package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/chatmem/pkg/llm"
)

var (
	listConversationsToolName    = "list_conversations"
	listConversationsDescription = "List the IDs of every conversation stored in chat memory."

	getConversationToolName    = "get_conversation"
	getConversationDescription = "Return the stored messages of one conversation, oldest first. Set last_n to return only the most recent messages."
)

// ListConversationsInput takes no arguments.
type ListConversationsInput struct{}

// ListConversationsOutput is the structured result of list_conversations.
type ListConversationsOutput struct {
	Count           int      `json:"count"`
	ConversationIDs []string `json:"conversation_ids"`
}

// GetConversationInput represents the input arguments for get_conversation.
type GetConversationInput struct {
	ConversationID string `json:"conversation_id" jsonschema:"the conversation to read"`
	LastN          int    `json:"last_n,omitempty" jsonschema:"optional number of most recent messages to return"`
}

// ConversationMessage is a flattened view of a stored message.
type ConversationMessage struct {
	Role      string         `json:"role"`
	Text      string         `json:"text"`
	ToolCalls []llm.ToolCall `json:"tool_calls,omitempty"`
}

// GetConversationOutput is the structured result of get_conversation.
type GetConversationOutput struct {
	ConversationID string                `json:"conversation_id"`
	Count          int                   `json:"count"`
	Messages       []ConversationMessage `json:"messages"`
}

func (s *Server) handleListConversations(ctx context.Context, _ *mcp.CallToolRequest, _ ListConversationsInput) (*mcp.CallToolResult, ListConversationsOutput, error) {
	ids, err := s.config.Driver.ListConversationIDs(ctx)
	if err != nil {
		s.config.Logger.Error("mcp list_conversations failed", "error", err)
		return errorResult(fmt.Sprintf("Listing conversations failed: %v", err)), ListConversationsOutput{}, nil
	}
	if ids == nil {
		ids = []string{}
	}

	output := ListConversationsOutput{Count: len(ids), ConversationIDs: ids}
	return textResult(output), output, nil
}

func (s *Server) handleGetConversation(ctx context.Context, _ *mcp.CallToolRequest, input GetConversationInput) (*mcp.CallToolResult, GetConversationOutput, error) {
	if input.ConversationID == "" {
		return errorResult("conversation_id is required"), GetConversationOutput{}, nil
	}
	if input.LastN < 0 {
		return errorResult("last_n must not be negative"), GetConversationOutput{}, nil
	}

	messages, err := s.config.Driver.FindMessages(ctx, input.ConversationID)
	if err != nil {
		s.config.Logger.Error("mcp get_conversation failed",
			"conversation_id", input.ConversationID,
			"error", err,
		)
		return errorResult(fmt.Sprintf("Reading conversation failed: %v", err)), GetConversationOutput{}, nil
	}
	if input.LastN > 0 && len(messages) > input.LastN {
		messages = messages[len(messages)-input.LastN:]
	}

	views := make([]ConversationMessage, 0, len(messages))
	for i := range messages {
		views = append(views, ConversationMessage{
			Role:      messages[i].Role(),
			Text:      messages[i].GetText(),
			ToolCalls: messages[i].ToolCalls,
		})
	}

	output := GetConversationOutput{
		ConversationID: input.ConversationID,
		Count:          len(views),
		Messages:       views,
	}
	return textResult(output), output, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}

func textResult(v any) *mcp.CallToolResult {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize results: %v", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}
}
