// Package testutils holds shared fixtures and contract specs for chatmem tests.
package testutils

import (
	"github.com/papercomputeco/chatmem/pkg/llm"
)

// Ptrs converts messages into the pointer slice taken by storage.Driver.SaveAll.
func Ptrs(msgs ...llm.Message) []*llm.Message {
	out := make([]*llm.Message, len(msgs))
	for i := range msgs {
		m := msgs[i]
		out[i] = &m
	}
	return out
}

// NewTestConversation returns a short, mixed-kind conversation.
func NewTestConversation() []llm.Message {
	return []llm.Message{
		llm.NewSystemMessage("You are a helpful assistant."),
		llm.NewUserMessage("What's the weather in Paris?"),
		llm.NewAssistantMessage("", llm.ToolCall{ID: "call_1", Type: "function", Name: "weather", Arguments: `{"city":"Paris"}`}),
		llm.NewToolResponseMessage(llm.ToolResponse{ID: "call_1", Name: "weather", ResponseData: "sunny, 21C"}),
		llm.NewAssistantMessage("It is sunny and 21C in Paris."),
	}
}

// InvalidMessage returns a message the default codec refuses to encode.
func InvalidMessage() llm.Message {
	return llm.Message{Type: "NARRATOR", Text: "once upon a time"}
}
