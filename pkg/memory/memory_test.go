package memory_test

import (
	"context"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatmem/pkg/llm"
	"github.com/papercomputeco/chatmem/pkg/memory"
	"github.com/papercomputeco/chatmem/pkg/storage"
	"github.com/papercomputeco/chatmem/pkg/storage/inmemory"
)

var _ = Describe("Window", func() {
	var (
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
	})

	newWindow := func(max int) *memory.Window {
		w, err := memory.NewWindow(driver, memory.WithMaxMessages(max))
		Expect(err).NotTo(HaveOccurred())
		return w
	}

	It("defaults to twenty messages", func() {
		w, err := memory.NewWindow(driver)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.MaxMessages()).To(Equal(memory.DefaultMaxMessages))
	})

	It("rejects a window smaller than one", func() {
		_, err := memory.NewWindow(driver, memory.WithMaxMessages(0))
		Expect(err).To(MatchError(memory.ErrInvalidMaxMessages))
	})

	It("appends to the stored history", func() {
		w := newWindow(10)

		_, err := w.Add(ctx, "u1", llm.NewUserMessage("hi"))
		Expect(err).NotTo(HaveOccurred())
		window, err := w.Add(ctx, "u1", llm.NewAssistantMessage("hello"))
		Expect(err).NotTo(HaveOccurred())

		Expect(window).To(Equal([]llm.Message{
			llm.NewUserMessage("hi"),
			llm.NewAssistantMessage("hello"),
		}))

		stored, err := w.Get(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(stored).To(Equal(window))
	})

	It("evicts the oldest non-system messages", func() {
		w := newWindow(3)

		_, err := w.Add(ctx, "u1",
			llm.NewSystemMessage("be brief"),
			llm.NewUserMessage("one"),
			llm.NewAssistantMessage("two"),
		)
		Expect(err).NotTo(HaveOccurred())

		window, err := w.Add(ctx, "u1", llm.NewUserMessage("three"))
		Expect(err).NotTo(HaveOccurred())
		Expect(window).To(Equal([]llm.Message{
			llm.NewSystemMessage("be brief"),
			llm.NewAssistantMessage("two"),
			llm.NewUserMessage("three"),
		}))
	})

	It("keeps the stored system message when it is sent again with metadata", func() {
		w := newWindow(10)
		withVersion := func() llm.Message {
			m := llm.NewSystemMessage("be nice")
			m.Metadata = map[string]any{"v": 1}
			return m
		}

		_, err := w.Add(ctx, "u1", withVersion(), llm.NewUserMessage("a"))
		Expect(err).NotTo(HaveOccurred())
		window, err := w.Add(ctx, "u1", withVersion(), llm.NewUserMessage("b"))
		Expect(err).NotTo(HaveOccurred())

		Expect(window).To(HaveLen(4))
		Expect(window[0].Type).To(Equal(llm.MessageTypeSystem))
		Expect(window[0].Metadata).To(Equal(map[string]any{"v": float64(1)}))
		Expect(window[1]).To(Equal(llm.NewUserMessage("a")))
		Expect(window[2].Type).To(Equal(llm.MessageTypeSystem))
		Expect(window[3]).To(Equal(llm.NewUserMessage("b")))

		stored, err := w.Get(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(stored).To(Equal(window))
	})

	It("replaces earlier system messages with a new one", func() {
		w := newWindow(10)

		_, err := w.Add(ctx, "u1", llm.NewSystemMessage("old rules"), llm.NewUserMessage("hi"))
		Expect(err).NotTo(HaveOccurred())

		window, err := w.Add(ctx, "u1", llm.NewSystemMessage("new rules"))
		Expect(err).NotTo(HaveOccurred())
		Expect(window).To(Equal([]llm.Message{
			llm.NewUserMessage("hi"),
			llm.NewSystemMessage("new rules"),
		}))
	})

	It("keeps the system message when the same one is added again", func() {
		w := newWindow(10)

		_, err := w.Add(ctx, "u1", llm.NewSystemMessage("rules"), llm.NewUserMessage("hi"))
		Expect(err).NotTo(HaveOccurred())

		window, err := w.Add(ctx, "u1", llm.NewSystemMessage("rules"))
		Expect(err).NotTo(HaveOccurred())
		Expect(window).To(HaveLen(3))
		Expect(window[0]).To(Equal(llm.NewSystemMessage("rules")))
	})

	It("clears a conversation", func() {
		w := newWindow(10)
		_, err := w.Add(ctx, "u1", llm.NewUserMessage("hi"))
		Expect(err).NotTo(HaveOccurred())

		Expect(w.Clear(ctx, "u1")).To(Succeed())

		stored, err := w.Get(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(stored).To(BeEmpty())
	})

	It("validates the conversation ID", func() {
		w := newWindow(10)

		_, err := w.Add(ctx, " ", llm.NewUserMessage("hi"))
		Expect(err).To(MatchError(storage.ErrInvalidArgument))
		Expect(w.Clear(ctx, "")).To(MatchError(storage.ErrInvalidArgument))
	})

	It("surfaces serialization errors from the store", func() {
		w := newWindow(10)

		_, err := w.Add(ctx, "u1", llm.Message{Type: "NARRATOR"})
		Expect(err).To(MatchError(storage.ErrSerialization))
	})

	It("does not lose concurrent appends to one conversation", func() {
		w := newWindow(1000)

		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				_, err := w.Add(ctx, "u1", llm.NewUserMessage(fmt.Sprintf("msg %d", i)))
				Expect(err).NotTo(HaveOccurred())
			}()
		}
		wg.Wait()

		stored, err := w.Get(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(stored).To(HaveLen(50))
	})
})
