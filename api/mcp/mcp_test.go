package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatmem/pkg/llm"
	chatmemlogger "github.com/papercomputeco/chatmem/pkg/logger"
	"github.com/papercomputeco/chatmem/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/chatmem/pkg/utils/test"
)

var _ = Describe("MCP Server", func() {
	var (
		server *Server
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()

		var err error
		server, err = NewServer(Config{
			Driver: driver,
			Logger: chatmemlogger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewServer", func() {
		It("returns an error when storage driver is nil", func() {
			_, err := NewServer(Config{Logger: chatmemlogger.Nop()})
			Expect(err).To(MatchError(ContainSubstring("storage driver is required")))
		})

		It("returns an error when logger is nil", func() {
			_, err := NewServer(Config{Driver: driver})
			Expect(err).To(MatchError(ContainSubstring("logger is required")))
		})

		It("allows an empty noop server", func() {
			noop, err := NewServer(Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(noop.Handler()).NotTo(BeNil())
		})

		It("returns an HTTP handler", func() {
			Expect(server.Handler()).NotTo(BeNil())
		})
	})

	Describe("list_conversations", func() {
		It("returns an empty list for an empty store", func() {
			result, output, err := server.handleListConversations(ctx, nil, ListConversationsInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.Count).To(BeZero())
			Expect(output.ConversationIDs).To(BeEmpty())
		})

		It("returns stored conversation IDs", func() {
			Expect(driver.SaveAll(ctx, "u1", testutils.Ptrs(llm.NewUserMessage("a")))).To(Succeed())
			Expect(driver.SaveAll(ctx, "u2", testutils.Ptrs(llm.NewUserMessage("b")))).To(Succeed())

			result, output, err := server.handleListConversations(ctx, nil, ListConversationsInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.ConversationIDs).To(ConsistOf("u1", "u2"))

			text := result.Content[0].(*sdkmcp.TextContent).Text
			Expect(text).To(MatchJSON(`{"count": 2, "conversation_ids": ["u1", "u2"]}`))
		})
	})

	Describe("get_conversation", func() {
		BeforeEach(func() {
			Expect(driver.SaveAll(ctx, "u1", testutils.Ptrs(testutils.NewTestConversation()...))).To(Succeed())
		})

		It("requires a conversation_id", func() {
			result, _, err := server.handleGetConversation(ctx, nil, GetConversationInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})

		It("rejects a negative last_n", func() {
			result, _, err := server.handleGetConversation(ctx, nil, GetConversationInput{ConversationID: "u1", LastN: -1})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})

		It("returns the conversation as role and text", func() {
			result, output, err := server.handleGetConversation(ctx, nil, GetConversationInput{ConversationID: "u1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.Count).To(Equal(5))
			Expect(output.Messages[0]).To(Equal(ConversationMessage{Role: "system", Text: "You are a helpful assistant."}))
			Expect(output.Messages[2].ToolCalls).To(HaveLen(1))
			Expect(output.Messages[3]).To(Equal(ConversationMessage{Role: "tool", Text: "sunny, 21C"}))
		})

		It("returns only the last_n most recent messages", func() {
			_, output, err := server.handleGetConversation(ctx, nil, GetConversationInput{ConversationID: "u1", LastN: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Count).To(Equal(2))
			Expect(output.Messages[1].Text).To(Equal("It is sunny and 21C in Paris."))
		})

		It("reports a blank conversation ID as a tool error", func() {
			result, _, err := server.handleGetConversation(ctx, nil, GetConversationInput{ConversationID: "  "})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})
	})

	Describe("over an in-memory transport", func() {
		It("lists both tools", func() {
			serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
			serverSession, err := server.MCPServer().Connect(ctx, serverTransport, nil)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(func() { _ = serverSession.Close() })

			client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0"}, nil)
			session, err := client.Connect(ctx, clientTransport, nil)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(func() { _ = session.Close() })

			tools, err := session.ListTools(ctx, &sdkmcp.ListToolsParams{})
			Expect(err).NotTo(HaveOccurred())

			names := []string{}
			for _, tool := range tools.Tools {
				names = append(names, tool.Name)
			}
			Expect(names).To(ConsistOf("list_conversations", "get_conversation"))
		})
	})
})
