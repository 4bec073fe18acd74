package testutils

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatmem/pkg/llm"
	"github.com/papercomputeco/chatmem/pkg/storage"
)

// DescribeDriverContract registers the behaviour every storage.Driver must
// share. Call it inside a Describe; newDriver is invoked before each test and
// must return a driver over an empty store.
func DescribeDriverContract(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = newDriver()
	})

	Describe("ListConversationIDs", func() {
		It("returns an empty slice for an empty store", func() {
			ids, err := driver.ListConversationIDs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).NotTo(BeNil())
			Expect(ids).To(BeEmpty())
		})

		It("returns every saved conversation exactly once", func() {
			for _, id := range []string{"u1", "u2", "u3"} {
				Expect(driver.SaveAll(ctx, id, Ptrs(llm.NewUserMessage("hi "+id)))).To(Succeed())
			}
			// Overwriting must not create a second entry.
			Expect(driver.SaveAll(ctx, "u2", Ptrs(llm.NewUserMessage("again")))).To(Succeed())

			ids, err := driver.ListConversationIDs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf("u1", "u2", "u3"))
		})
	})

	Describe("FindMessages", func() {
		It("returns an empty slice for an unknown conversation", func() {
			msgs, err := driver.FindMessages(ctx, "missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).NotTo(BeNil())
			Expect(msgs).To(BeEmpty())
		})

		It("rejects a blank conversation ID", func() {
			_, err := driver.FindMessages(ctx, "  ")
			Expect(err).To(MatchError(storage.ErrInvalidArgument))
		})
	})

	Describe("SaveAll", func() {
		It("round trips messages in order", func() {
			conv := NewTestConversation()
			Expect(driver.SaveAll(ctx, "conv", Ptrs(conv...))).To(Succeed())

			msgs, err := driver.FindMessages(ctx, "conv")
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(Equal(conv))
		})

		It("returns what was saved for messages with numeric metadata", func() {
			msg := llm.NewUserMessage("hi")
			msg.Metadata = map[string]any{"turn": 1, "tags": map[string]string{"lang": "en"}}
			Expect(driver.SaveAll(ctx, "meta", []*llm.Message{&msg})).To(Succeed())

			msgs, err := driver.FindMessages(ctx, "meta")
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(Equal([]llm.Message{msg}))
			Expect(msg.Metadata["turn"]).To(Equal(float64(1)))
		})

		It("overwrites instead of appending", func() {
			Expect(driver.SaveAll(ctx, "u2", Ptrs(
				llm.NewUserMessage("msg1"),
				llm.NewAssistantMessage("msg2"),
				llm.NewUserMessage("msg3"),
			))).To(Succeed())
			Expect(driver.SaveAll(ctx, "u2", Ptrs(llm.NewAssistantMessage("msg4")))).To(Succeed())

			msgs, err := driver.FindMessages(ctx, "u2")
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(Equal([]llm.Message{llm.NewAssistantMessage("msg4")}))
		})

		It("removes the conversation when given no messages", func() {
			Expect(driver.SaveAll(ctx, "conv", Ptrs(llm.NewUserMessage("hi")))).To(Succeed())
			Expect(driver.SaveAll(ctx, "conv", []*llm.Message{})).To(Succeed())

			msgs, err := driver.FindMessages(ctx, "conv")
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(BeEmpty())

			ids, err := driver.ListConversationIDs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).NotTo(ContainElement("conv"))
		})

		It("rejects a blank conversation ID", func() {
			err := driver.SaveAll(ctx, "", Ptrs(llm.NewUserMessage("hi")))
			Expect(err).To(MatchError(storage.ErrInvalidArgument))
		})

		It("rejects a nil message slice", func() {
			err := driver.SaveAll(ctx, "conv", nil)
			Expect(err).To(MatchError(storage.ErrInvalidArgument))
		})

		It("rejects nil elements without writing anything", func() {
			Expect(driver.SaveAll(ctx, "conv", Ptrs(llm.NewUserMessage("keep me")))).To(Succeed())

			msg := llm.NewUserMessage("hi")
			err := driver.SaveAll(ctx, "conv", []*llm.Message{&msg, nil})
			Expect(err).To(MatchError(storage.ErrInvalidArgument))

			msgs, err := driver.FindMessages(ctx, "conv")
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(Equal([]llm.Message{llm.NewUserMessage("keep me")}))
		})

		It("reports encode failures as serialization errors", func() {
			err := driver.SaveAll(ctx, "conv", Ptrs(InvalidMessage()))
			Expect(err).To(MatchError(storage.ErrSerialization))

			var serr *storage.SerializationError
			Expect(err).To(BeAssignableToTypeOf(serr))
			Expect(err).To(MatchError(llm.ErrUnknownMessageType))
		})
	})

	Describe("DeleteConversation", func() {
		It("removes a stored conversation", func() {
			Expect(driver.SaveAll(ctx, "conv", Ptrs(llm.NewUserMessage("hi")))).To(Succeed())
			Expect(driver.DeleteConversation(ctx, "conv")).To(Succeed())

			msgs, err := driver.FindMessages(ctx, "conv")
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(BeEmpty())
		})

		It("is a no-op for unknown conversations", func() {
			Expect(driver.DeleteConversation(ctx, "missing")).To(Succeed())
			Expect(driver.DeleteConversation(ctx, "missing")).To(Succeed())
		})

		It("rejects a blank conversation ID", func() {
			Expect(driver.DeleteConversation(ctx, "\t")).To(MatchError(storage.ErrInvalidArgument))
		})
	})

	It("walks a full conversation lifecycle", func() {
		Expect(driver.SaveAll(ctx, "u1", Ptrs(
			llm.NewTextMessage("user", "hi"),
			llm.NewTextMessage("assistant", "hello"),
		))).To(Succeed())

		ids, err := driver.ListConversationIDs(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(Equal([]string{"u1"}))

		msgs, err := driver.FindMessages(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(2))
		Expect(msgs[0].GetText()).To(Equal("hi"))
		Expect(msgs[1].GetText()).To(Equal("hello"))

		Expect(driver.DeleteConversation(ctx, "u1")).To(Succeed())

		msgs, err = driver.FindMessages(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(BeEmpty())
	})
}
