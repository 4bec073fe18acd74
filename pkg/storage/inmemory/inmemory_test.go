package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatmem/pkg/llm"
	"github.com/papercomputeco/chatmem/pkg/storage"
	"github.com/papercomputeco/chatmem/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/chatmem/pkg/utils/test"
)

var _ = Describe("Driver", func() {
	testutils.DescribeDriverContract(func() storage.Driver {
		return inmemory.NewDriver()
	})

	It("lists conversation IDs in lexical order", func() {
		ctx := context.Background()
		d := inmemory.NewDriver()
		for _, id := range []string{"c", "a", "b"} {
			Expect(d.SaveAll(ctx, id, testutils.Ptrs(llm.NewUserMessage(id)))).To(Succeed())
		}

		ids, err := d.ListConversationIDs(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(Equal([]string{"a", "b", "c"}))
		Expect(d.Count()).To(Equal(3))
	})

	It("stores messages in encoded form", func() {
		d := inmemory.NewDriver()
		Expect(d.SaveAll(context.Background(), "u1", testutils.Ptrs(llm.NewUserMessage("hi")))).To(Succeed())

		raw := d.Raw("u1")
		Expect(raw).To(HaveLen(1))
		Expect(raw[0]).To(MatchJSON(`{"messageType":"USER","text":"hi"}`))
	})

	It("reads raw entries under the exact conversation ID", func() {
		d := inmemory.NewDriver()
		Expect(d.SaveAll(context.Background(), " a", testutils.Ptrs(llm.NewUserMessage("hi")))).To(Succeed())

		Expect(d.Raw(" a")).To(HaveLen(1))
		Expect(d.Raw("a")).To(BeEmpty())
	})

	It("keeps the previous history when an encode fails", func() {
		ctx := context.Background()
		d := inmemory.NewDriver(inmemory.WithCodec(testutils.NewFailingCodec(1)))
		Expect(d.SaveAll(ctx, "u1", testutils.Ptrs(llm.NewUserMessage("previous")))).To(Succeed())

		err := d.SaveAll(ctx, "u1", testutils.Ptrs(llm.NewUserMessage("a"), llm.NewUserMessage("b")))
		Expect(err).To(MatchError(storage.ErrSerialization))
		Expect(err).To(MatchError(testutils.ErrInjected))

		msgs, err := d.FindMessages(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(Equal([]llm.Message{llm.NewUserMessage("previous")}))
	})

	It("reports decode failures", func() {
		ctx := context.Background()
		codec := &testutils.FailingCodec{FailEncodeAt: -1, FailDecode: true}
		d := inmemory.NewDriver(inmemory.WithCodec(codec))
		Expect(d.SaveAll(ctx, "u1", testutils.Ptrs(llm.NewUserMessage("hi")))).To(Succeed())

		_, err := d.FindMessages(ctx, "u1")
		Expect(err).To(MatchError(storage.ErrSerialization))
	})
})
