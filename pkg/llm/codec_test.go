package llm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatmem/pkg/llm"
)

var _ = Describe("JSONCodec", func() {
	var codec *llm.JSONCodec

	BeforeEach(func() {
		codec = llm.NewJSONCodec()
	})

	Describe("round trips", func() {
		DescribeTable("each message kind",
			func(msg llm.Message) {
				encoded, err := codec.Encode(&msg)
				Expect(err).NotTo(HaveOccurred())

				decoded, err := codec.Decode(encoded)
				Expect(err).NotTo(HaveOccurred())
				Expect(decoded).To(Equal(msg))
			},
			Entry("user", llm.Message{
				Type:     llm.MessageTypeUser,
				Text:     "What is in this picture?",
				Metadata: map[string]any{"source": "web"},
				Media:    []llm.Media{{MimeType: "image/png", Data: "https://example.com/cat.png"}},
			}),
			Entry("assistant with tool calls", llm.NewAssistantMessage("",
				llm.ToolCall{ID: "call_1", Type: "function", Name: "weather", Arguments: `{"city":"Paris"}`},
			)),
			Entry("system", llm.NewSystemMessage("You are a helpful assistant.")),
			Entry("tool", llm.NewToolResponseMessage(
				llm.ToolResponse{ID: "call_1", Name: "weather", ResponseData: "sunny"},
			)),
		)
	})

	Describe("Encode", func() {
		It("leaves the message in the form a decode returns", func() {
			msg := llm.Message{
				Type:     llm.MessageTypeAssistant,
				Text:     "done",
				Metadata: map[string]any{"turn": 3, "scores": []int{1, 2}},
				Media:    []llm.Media{},
			}
			encoded, err := codec.Encode(&msg)
			Expect(err).NotTo(HaveOccurred())

			Expect(msg.Metadata).To(Equal(map[string]any{"turn": float64(3), "scores": []any{float64(1), float64(2)}}))
			Expect(msg.Media).To(BeNil())

			decoded, err := codec.Decode(encoded)
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(Equal(msg))
		})

		It("leaves the message untouched when encoding fails", func() {
			msg := llm.Message{Type: llm.MessageTypeUser, Text: "hi", Metadata: map[string]any{"turn": 1}, ToolCalls: []llm.ToolCall{{ID: "x"}}}
			_, err := codec.Encode(&msg)
			Expect(err).To(MatchError(llm.ErrFieldNotAllowed))
			Expect(msg.Metadata["turn"]).To(Equal(1))
		})

		It("writes the discriminator", func() {
			msg := llm.NewUserMessage("hi")
			encoded, err := codec.Encode(&msg)
			Expect(err).NotTo(HaveOccurred())
			Expect(encoded).To(MatchJSON(`{"messageType":"USER","text":"hi"}`))
		})

		It("rejects nil messages", func() {
			_, err := codec.Encode(nil)
			Expect(err).To(HaveOccurred())
		})

		It("rejects unknown kinds", func() {
			_, err := codec.Encode(&llm.Message{Type: "NARRATOR", Text: "hi"})
			Expect(err).To(MatchError(llm.ErrUnknownMessageType))
		})

		It("rejects tool calls on a user message", func() {
			msg := llm.NewUserMessage("hi")
			msg.ToolCalls = []llm.ToolCall{{ID: "call_1", Name: "weather"}}

			_, err := codec.Encode(&msg)
			Expect(err).To(MatchError(llm.ErrFieldNotAllowed))
			Expect(err.Error()).To(ContainSubstring("toolCalls"))
		})

		It("rejects media on a system message", func() {
			msg := llm.NewSystemMessage("rules")
			msg.Media = []llm.Media{{MimeType: "text/plain", Data: "x"}}

			_, err := codec.Encode(&msg)
			Expect(err).To(MatchError(llm.ErrFieldNotAllowed))
		})

		It("rejects text on a tool message", func() {
			msg := llm.NewToolResponseMessage()
			msg.Text = "oops"

			_, err := codec.Encode(&msg)
			Expect(err).To(MatchError(llm.ErrFieldNotAllowed))
		})
	})

	Describe("Decode", func() {
		It("rejects invalid JSON", func() {
			_, err := codec.Decode("{not json")
			Expect(err).To(MatchError(llm.ErrMalformedMessage))
		})

		It("rejects a missing discriminator", func() {
			_, err := codec.Decode(`{"text":"hi"}`)
			Expect(err).To(MatchError(llm.ErrUnknownMessageType))
		})

		It("rejects an unknown discriminator", func() {
			_, err := codec.Decode(`{"messageType":"NARRATOR","text":"hi"}`)
			Expect(err).To(MatchError(llm.ErrUnknownMessageType))
		})

		It("fails when a structured field has the wrong shape", func() {
			_, err := codec.Decode(`{"messageType":"ASSISTANT","toolCalls":"nope"}`)
			Expect(err).To(HaveOccurred())
		})

		It("accepts a lower case discriminator", func() {
			msg, err := codec.Decode(`{"messageType":"user","text":"hi"}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Type).To(Equal(llm.MessageTypeUser))
		})

		It("reads Spring AI tool responses", func() {
			msg, err := codec.Decode(`{"messageType":"TOOL","metadata":{"messageType":"TOOL"},"responses":[{"id":"c1","name":"clock","responseData":"noon"}]}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.ToolResponses).To(HaveLen(1))
			Expect(msg.GetText()).To(Equal("noon"))
		})

		It("ignores fields outside the kind", func() {
			msg, err := codec.Decode(`{"messageType":"SYSTEM","text":"rules","toolCalls":[{"id":"x"}]}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.ToolCalls).To(BeNil())
		})
	})
})

var _ = Describe("Equal", func() {
	It("compares messages by their stored form", func() {
		a := llm.Message{Type: llm.MessageTypeSystem, Text: "s", Metadata: map[string]any{"v": 1}}
		b := llm.Message{Type: llm.MessageTypeSystem, Text: "s", Metadata: map[string]any{"v": float64(1)}}
		Expect(llm.Equal(a, b)).To(BeTrue())
	})

	It("tells different messages apart", func() {
		Expect(llm.Equal(llm.NewSystemMessage("a"), llm.NewSystemMessage("b"))).To(BeFalse())
		Expect(llm.Equal(llm.NewSystemMessage("a"), llm.NewUserMessage("a"))).To(BeFalse())
	})
})
