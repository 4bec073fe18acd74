package memory

import (
	"github.com/papercomputeco/chatmem/pkg/llm"
)

// apply merges incoming into stored and trims the result to maxMessages.
// It returns the new window and the number of messages evicted for size.
func apply(stored, incoming []llm.Message, maxMessages int) ([]llm.Message, int) {
	replaceSystem := false
	for i := range incoming {
		if incoming[i].Type == llm.MessageTypeSystem && !contains(stored, incoming[i]) {
			replaceSystem = true
			break
		}
	}

	merged := make([]llm.Message, 0, len(stored)+len(incoming))
	for _, m := range stored {
		if replaceSystem && m.Type == llm.MessageTypeSystem {
			continue
		}
		merged = append(merged, m)
	}
	merged = append(merged, incoming...)

	overflow := len(merged) - maxMessages
	if overflow <= 0 {
		return merged, 0
	}

	window := make([]llm.Message, 0, maxMessages)
	evicted := 0
	for _, m := range merged {
		if evicted < overflow && m.Type != llm.MessageTypeSystem {
			evicted++
			continue
		}
		window = append(window, m)
	}
	return window, evicted
}

func contains(messages []llm.Message, target llm.Message) bool {
	for i := range messages {
		if llm.Equal(messages[i], target) {
			return true
		}
	}
	return false
}
