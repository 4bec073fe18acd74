package storage

import (
	"strings"

	"github.com/papercomputeco/chatmem/pkg/llm"
)

// ValidateConversationID rejects empty and whitespace-only IDs.
func ValidateConversationID(conversationID string) error {
	if strings.TrimSpace(conversationID) == "" {
		return &InvalidArgumentError{Arg: "conversationID", Reason: "cannot be null or empty"}
	}
	return nil
}

// ValidateSaveAll checks every SaveAll argument up front so that drivers can
// fail without touching the store.
func ValidateSaveAll(conversationID string, messages []*llm.Message) error {
	if err := ValidateConversationID(conversationID); err != nil {
		return err
	}

	if messages == nil {
		return &InvalidArgumentError{Arg: "messages", Reason: "cannot be null"}
	}

	for _, m := range messages {
		if m == nil {
			return &InvalidArgumentError{Arg: "messages", Reason: "cannot contain null elements"}
		}
	}

	return nil
}
