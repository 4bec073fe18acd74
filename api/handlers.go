package api

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/chatmem/pkg/eventstream"
	"github.com/papercomputeco/chatmem/pkg/llm"
	"github.com/papercomputeco/chatmem/pkg/llm/provider"
)

// ConversationsResponse lists stored conversation IDs.
type ConversationsResponse struct {
	Count           int      `json:"count"`
	ConversationIDs []string `json:"conversation_ids"`
}

// MessagesResponse carries the messages of one conversation, oldest first.
type MessagesResponse struct {
	ConversationID string        `json:"conversation_id"`
	Count          int           `json:"count"`
	Messages       []llm.Message `json:"messages"`
}

// MessagesRequest is the body of PUT and POST on a conversation's messages.
// Each element is decoded by its "messageType" discriminator.
type MessagesRequest struct {
	Messages []json.RawMessage `json:"messages"`
}

var (
	codec    = llm.NewJSONCodec()
	detector = provider.NewDetector()
)

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListConversations handles GET /v1/conversations.
func (s *Server) handleListConversations(c *fiber.Ctx) error {
	ids, err := s.driver.ListConversationIDs(c.UserContext())
	if err != nil {
		return s.fail(c, "list", err)
	}
	if ids == nil {
		ids = []string{}
	}

	return c.JSON(ConversationsResponse{
		Count:           len(ids),
		ConversationIDs: ids,
	})
}

// handleGetMessages handles GET /v1/conversations/:id/messages.
// Query parameters:
//   - last_n (optional): return only the most recent n messages
func (s *Server) handleGetMessages(c *fiber.Ctx) error {
	id := c.Params("id")

	lastN := 0
	if raw := c.Query("last_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return badRequest(c, "last_n must be a positive integer")
		}
		lastN = n
	}

	messages, err := s.driver.FindMessages(c.UserContext(), id)
	if err != nil {
		return s.fail(c, "find", err)
	}
	if lastN > 0 && len(messages) > lastN {
		messages = messages[len(messages)-lastN:]
	}

	return c.JSON(MessagesResponse{
		ConversationID: id,
		Count:          len(messages),
		Messages:       messages,
	})
}

// handleReplaceMessages handles PUT /v1/conversations/:id/messages. An empty
// messages array clears the conversation; a missing one is rejected.
func (s *Server) handleReplaceMessages(c *fiber.Ctx) error {
	id := c.Params("id")

	messages, err := parseMessages(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var ptrs []*llm.Message
	if messages != nil {
		ptrs = make([]*llm.Message, len(messages))
		for i := range messages {
			ptrs[i] = &messages[i]
		}
	}

	if err := s.driver.SaveAll(c.UserContext(), id, ptrs); err != nil {
		return s.fail(c, "replace", err)
	}
	s.publish(eventstream.EventTypeConversationSaved, id, len(messages))

	return c.JSON(MessagesResponse{
		ConversationID: id,
		Count:          len(messages),
		Messages:       messages,
	})
}

// handleAppendMessages handles POST /v1/conversations/:id/messages. The
// messages pass through the chat memory window and the stored window is
// returned.
func (s *Server) handleAppendMessages(c *fiber.Ctx) error {
	id := c.Params("id")

	messages, err := parseMessages(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if len(messages) == 0 {
		return badRequest(c, "messages must not be empty")
	}

	window, err := s.window.Add(c.UserContext(), id, messages...)
	if err != nil {
		return s.fail(c, "append", err)
	}
	s.publish(eventstream.EventTypeConversationSaved, id, len(window))

	return c.JSON(MessagesResponse{
		ConversationID: id,
		Count:          len(window),
		Messages:       window,
	})
}

// handleAppendTranscript handles POST /v1/conversations/:id/transcripts. The
// body is a provider-native chat request or response, converted to messages
// and appended through the chat memory window.
// Query parameters:
//   - format (optional): openai, anthropic, ollama, or auto (default)
func (s *Server) handleAppendTranscript(c *fiber.Ctx) error {
	id := c.Params("id")

	messages, err := parseTranscript(c.Query("format", "auto"), c.Body())
	if err != nil {
		return badRequest(c, err.Error())
	}

	window, err := s.window.Add(c.UserContext(), id, messages...)
	if err != nil {
		return s.fail(c, "transcript", err)
	}
	s.publish(eventstream.EventTypeConversationSaved, id, len(window))

	return c.JSON(MessagesResponse{
		ConversationID: id,
		Count:          len(window),
		Messages:       window,
	})
}

func parseTranscript(format string, body []byte) ([]llm.Message, error) {
	if format == "auto" {
		return detector.ParseMessages(body)
	}
	p, err := provider.New(format)
	if err != nil {
		return nil, err
	}
	return provider.Parse(p, body)
}

// handleDeleteConversation handles DELETE /v1/conversations/:id.
func (s *Server) handleDeleteConversation(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := s.window.Clear(c.UserContext(), id); err != nil {
		return s.fail(c, "delete", err)
	}
	s.publish(eventstream.EventTypeConversationDeleted, id, 0)

	return c.SendStatus(fiber.StatusNoContent)
}

// parseMessages decodes the request body. A body without a messages field
// yields nil.
func parseMessages(c *fiber.Ctx) ([]llm.Message, error) {
	var req MessagesRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if req.Messages == nil {
		return nil, nil
	}

	messages := make([]llm.Message, 0, len(req.Messages))
	for i, raw := range req.Messages {
		msg, err := codec.Decode(string(raw))
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (s *Server) publish(eventType, conversationID string, count int) {
	if s.config.Events == nil {
		return
	}
	s.config.Events.Enqueue(eventstream.NewConversationEvent(eventType, conversationID, count))
}
