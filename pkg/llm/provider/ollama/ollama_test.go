package ollama_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatmem/pkg/llm"
	"github.com/papercomputeco/chatmem/pkg/llm/provider"
	"github.com/papercomputeco/chatmem/pkg/llm/provider/ollama"
)

var _ = Describe("Ollama Provider", func() {
	var p provider.Provider

	BeforeEach(func() {
		p = ollama.New()
	})

	Describe("Name", func() {
		It("returns 'ollama'", func() {
			Expect(p.Name()).To(Equal("ollama"))
		})
	})

	Describe("CanHandle", func() {
		It("returns true when keep_alive is set", func() {
			Expect(p.CanHandle([]byte(`{"model": "llama3.2", "keep_alive": "5m", "messages": []}`))).To(BeTrue())
		})

		It("returns true when options are set", func() {
			Expect(p.CanHandle([]byte(`{"model": "llama3.2", "options": {"temperature": 0.2}, "messages": []}`))).To(BeTrue())
		})

		It("returns true for a response with timing fields", func() {
			Expect(p.CanHandle([]byte(`{"model": "llama3.2", "message": {"role": "assistant", "content": "hi"}, "done": true, "total_duration": 1200}`))).To(BeTrue())
		})

		It("returns false for a plain request", func() {
			Expect(p.CanHandle([]byte(`{"model": "llama3.2", "messages": []}`))).To(BeFalse())
		})
	})

	Describe("ParseMessages", func() {
		It("converts a request with tools and images", func() {
			payload := []byte(`{
				"model": "llama3.2",
				"messages": [
					{"role": "system", "content": "Be brief."},
					{"role": "user", "content": "What is this?", "images": ["iVBOR"]},
					{"role": "assistant", "content": "", "tool_calls": [
						{"function": {"name": "classify", "arguments": {"kind": "image"}}}
					]},
					{"role": "tool", "tool_name": "classify", "content": "a cat"}
				]
			}`)

			messages, err := p.ParseMessages(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(messages).To(HaveLen(4))
			Expect(messages[0]).To(Equal(llm.NewSystemMessage("Be brief.")))
			Expect(messages[1].Media).To(Equal([]llm.Media{{MimeType: "image/*", Data: "iVBOR"}}))
			Expect(messages[2].ToolCalls).To(Equal([]llm.ToolCall{{Type: "function", Name: "classify", Arguments: `{"kind": "image"}`}}))
			Expect(messages[3]).To(Equal(llm.NewToolResponseMessage(llm.ToolResponse{Name: "classify", ResponseData: "a cat"})))
		})

		It("converts a response", func() {
			messages, err := p.ParseMessages([]byte(`{"model": "llama3.2", "message": {"role": "assistant", "content": "Hello!"}, "done": true}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(messages).To(Equal([]llm.Message{llm.NewAssistantMessage("Hello!")}))
		})

		It("rejects unknown roles", func() {
			_, err := p.ParseMessages([]byte(`{"messages": [{"role": "narrator", "content": "x"}]}`))
			Expect(err).To(MatchError(llm.ErrUnknownMessageType))
		})
	})
})
