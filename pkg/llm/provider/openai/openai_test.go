package openai_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatmem/pkg/llm"
	"github.com/papercomputeco/chatmem/pkg/llm/provider"
	"github.com/papercomputeco/chatmem/pkg/llm/provider/openai"
)

var _ = Describe("OpenAI Provider", func() {
	var p provider.Provider

	BeforeEach(func() {
		p = openai.New()
	})

	Describe("Name", func() {
		It("returns 'openai'", func() {
			Expect(p.Name()).To(Equal("openai"))
		})
	})

	Describe("CanHandle", func() {
		DescribeTable("OpenAI model names",
			func(model string) {
				payload := []byte(`{"model": "` + model + `", "messages": [{"role": "user", "content": "Hello"}]}`)
				Expect(p.CanHandle(payload)).To(BeTrue())
			},
			Entry("gpt-4", "gpt-4"),
			Entry("gpt-4o-mini", "gpt-4o-mini"),
			Entry("o1 models", "o1-preview"),
			Entry("o3 models", "o3-mini"),
			Entry("chatgpt models", "chatgpt-4o-latest"),
		)

		It("returns true for a chat.completion response", func() {
			Expect(p.CanHandle([]byte(`{"id": "chatcmpl-123", "object": "chat.completion", "choices": []}`))).To(BeTrue())
		})

		It("returns false for Claude models", func() {
			Expect(p.CanHandle([]byte(`{"model": "claude-sonnet-4-5", "messages": []}`))).To(BeFalse())
		})

		It("returns false for invalid JSON", func() {
			Expect(p.CanHandle([]byte(`not json`))).To(BeFalse())
		})
	})

	Describe("ParseMessages", func() {
		It("converts a request with every role", func() {
			payload := []byte(`{
				"model": "gpt-4o",
				"messages": [
					{"role": "system", "content": "Be brief."},
					{"role": "user", "content": "Weather in Paris?"},
					{"role": "assistant", "content": null, "tool_calls": [
						{"id": "call_1", "type": "function", "function": {"name": "weather", "arguments": "{\"city\":\"Paris\"}"}}
					]},
					{"role": "tool", "tool_call_id": "call_1", "name": "weather", "content": "sunny"},
					{"role": "assistant", "content": "Sunny."}
				]
			}`)

			messages, err := p.ParseMessages(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(messages).To(Equal([]llm.Message{
				llm.NewSystemMessage("Be brief."),
				llm.NewUserMessage("Weather in Paris?"),
				llm.NewAssistantMessage("", llm.ToolCall{ID: "call_1", Type: "function", Name: "weather", Arguments: `{"city":"Paris"}`}),
				llm.NewToolResponseMessage(llm.ToolResponse{ID: "call_1", Name: "weather", ResponseData: "sunny"}),
				llm.NewAssistantMessage("Sunny."),
			}))
		})

		It("maps the developer role to a system message", func() {
			messages, err := p.ParseMessages([]byte(`{"model": "o3", "messages": [{"role": "developer", "content": "rules"}]}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(messages[0].Type).To(Equal(llm.MessageTypeSystem))
		})

		It("flattens multipart content and keeps images as media", func() {
			payload := []byte(`{"model": "gpt-4o", "messages": [{"role": "user", "content": [
				{"type": "text", "text": "What is this?"},
				{"type": "image_url", "image_url": {"url": "data:image/png;base64,iVBOR"}},
				{"type": "text", "text": "Be specific."}
			]}]}`)

			messages, err := p.ParseMessages(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(messages[0].Text).To(Equal("What is this?\nBe specific."))
			Expect(messages[0].Media).To(Equal([]llm.Media{{MimeType: "image/png", Data: "data:image/png;base64,iVBOR"}}))
		})

		It("converts the first choice of a response", func() {
			payload := []byte(`{
				"id": "chatcmpl-123",
				"object": "chat.completion",
				"model": "gpt-4o",
				"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hello!"}, "finish_reason": "stop"}]
			}`)

			messages, err := p.ParseMessages(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(messages).To(Equal([]llm.Message{llm.NewAssistantMessage("Hello!")}))
		})

		It("rejects unknown roles", func() {
			_, err := p.ParseMessages([]byte(`{"model": "gpt-4o", "messages": [{"role": "narrator", "content": "x"}]}`))
			Expect(err).To(MatchError(llm.ErrUnknownMessageType))
		})

		It("rejects malformed content", func() {
			_, err := p.ParseMessages([]byte(`{"model": "gpt-4o", "messages": [{"role": "user", "content": 42}]}`))
			Expect(err).To(MatchError(ContainSubstring("message 0")))
		})
	})
})
