package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// DiscriminatorField is the JSON field carrying the message kind.
const DiscriminatorField = "messageType"

var (
	// ErrUnknownMessageType is returned when a message kind is missing or not
	// one of the known kinds.
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrFieldNotAllowed is returned when a message sets a structured field
	// that its kind does not carry.
	ErrFieldNotAllowed = errors.New("field not allowed for message type")

	// ErrMalformedMessage is returned when a stored payload is not valid JSON.
	ErrMalformedMessage = errors.New("malformed message payload")
)

// Codec converts messages to and from their stored string form.
//
// Encode may rewrite msg into the form Decode returns for the encoded data,
// so a caller holding msg sees exactly what a later read yields.
type Codec interface {
	Encode(msg *Message) (string, error)
	Decode(data string) (Message, error)
}

// JSONCodec is the default Codec. Messages are written as a JSON object with a
// "messageType" discriminator; decoding dispatches on that field into the
// payload shape of the matching kind.
type JSONCodec struct{}

// NewJSONCodec returns the default JSON codec.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

var _ Codec = (*JSONCodec)(nil)

// Encode validates msg against its kind and marshals it. On success msg is
// replaced by its decoded form: JSON numbers in Metadata become float64,
// nested maps become map[string]any, and empty collections become nil.
func (c *JSONCodec) Encode(msg *Message) (string, error) {
	if msg == nil {
		return "", errors.New("cannot encode nil message")
	}
	if err := Validate(msg); err != nil {
		return "", err
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshalling %s message: %w", msg.Type, err)
	}

	data := string(b)
	stored, err := c.Decode(data)
	if err != nil {
		return "", fmt.Errorf("normalizing %s message: %w", msg.Type, err)
	}
	*msg = stored

	return data, nil
}

// Equal reports whether a and b encode to the same stored form. Metadata
// values that differ only in Go type, like int 1 and float64 1, compare
// equal.
func Equal(a, b Message) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(ab) == string(bb)
}

// Decode reads the discriminator and unmarshals the payload for that kind.
func (c *JSONCodec) Decode(data string) (Message, error) {
	if !gjson.Valid(data) {
		return Message{}, ErrMalformedMessage
	}

	disc := gjson.Get(data, DiscriminatorField)
	if !disc.Exists() || disc.Type != gjson.String {
		return Message{}, fmt.Errorf("%w: missing %q", ErrUnknownMessageType, DiscriminatorField)
	}

	t := MessageType(strings.ToUpper(disc.String()))
	switch t {
	case MessageTypeUser:
		var p userPayload
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return Message{}, fmt.Errorf("decoding user message: %w", err)
		}
		return Message{Type: t, Text: p.Text, Metadata: p.Metadata, Media: p.Media}, nil

	case MessageTypeAssistant:
		var p assistantPayload
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return Message{}, fmt.Errorf("decoding assistant message: %w", err)
		}
		return Message{Type: t, Text: p.Text, Metadata: p.Metadata, Media: p.Media, ToolCalls: p.ToolCalls}, nil

	case MessageTypeSystem:
		var p systemPayload
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return Message{}, fmt.Errorf("decoding system message: %w", err)
		}
		return Message{Type: t, Text: p.Text, Metadata: p.Metadata}, nil

	case MessageTypeTool:
		var p toolPayload
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return Message{}, fmt.Errorf("decoding tool message: %w", err)
		}
		responses := p.ToolResponses
		if responses == nil {
			// Some writers name the field "responses".
			responses = p.Responses
		}
		return Message{Type: t, Metadata: p.Metadata, ToolResponses: responses}, nil

	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownMessageType, disc.String())
	}
}

// Validate checks that msg has a known kind and sets only the structured
// fields allowed for it.
func Validate(msg *Message) error {
	if !msg.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMessageType, string(msg.Type))
	}

	switch msg.Type {
	case MessageTypeUser:
		return disallow(msg.Type, "toolCalls", len(msg.ToolCalls), "toolResponses", len(msg.ToolResponses))
	case MessageTypeAssistant:
		return disallow(msg.Type, "toolResponses", len(msg.ToolResponses))
	case MessageTypeSystem:
		return disallow(msg.Type, "media", len(msg.Media), "toolCalls", len(msg.ToolCalls), "toolResponses", len(msg.ToolResponses))
	case MessageTypeTool:
		if msg.Text != "" {
			return fmt.Errorf("%w: %s cannot set %s", ErrFieldNotAllowed, msg.Type, "text")
		}
		return disallow(msg.Type, "media", len(msg.Media), "toolCalls", len(msg.ToolCalls))
	}

	return nil
}

// disallow takes (name, length) pairs and fails on the first non-empty field.
func disallow(t MessageType, pairs ...any) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if n, _ := pairs[i+1].(int); n > 0 {
			return fmt.Errorf("%w: %s cannot set %s", ErrFieldNotAllowed, t, pairs[i])
		}
	}
	return nil
}

type userPayload struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
	Media    []Media        `json:"media"`
}

type assistantPayload struct {
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata"`
	Media     []Media        `json:"media"`
	ToolCalls []ToolCall     `json:"toolCalls"`
}

type systemPayload struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

type toolPayload struct {
	Metadata      map[string]any `json:"metadata"`
	ToolResponses []ToolResponse `json:"toolResponses"`
	Responses     []ToolResponse `json:"responses"`
}
