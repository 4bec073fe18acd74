package kafka_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/chatmem/pkg/eventstream"
	"github.com/papercomputeco/chatmem/pkg/eventstream/kafka"
)

type fakeWriter struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

var _ kafka.MessageWriter = (*fakeWriter)(nil)

var _ = Describe("Publisher", func() {
	var (
		writer    *fakeWriter
		publisher *kafka.Publisher
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		writer = &fakeWriter{}
		publisher = kafka.NewPublisherWithWriter(writer, kafka.DefaultTopic, nil)
	})

	It("requires at least one broker", func() {
		_, err := kafka.NewPublisher(kafka.Config{})
		Expect(err).To(MatchError(kafka.ErrNoBrokers))
	})

	It("creates a writer-backed publisher when brokers are set", func() {
		p, err := kafka.NewPublisher(kafka.Config{Brokers: []string{"localhost:9092"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Close()).To(Succeed())
	})

	It("returns ErrNilConversationEvent for nil events", func() {
		err := publisher.PublishConversation(ctx, nil)
		Expect(err).To(MatchError(eventstream.ErrNilConversationEvent))
		Expect(writer.messages).To(BeEmpty())
	})

	It("writes the event keyed by conversation ID", func() {
		event := eventstream.NewConversationEvent(eventstream.EventTypeConversationSaved, "u1", 3)
		Expect(publisher.PublishConversation(ctx, event)).To(Succeed())

		Expect(writer.messages).To(HaveLen(1))
		msg := writer.messages[0]
		Expect(string(msg.Key)).To(Equal("u1"))
		Expect(string(msg.Value)).To(ContainSubstring(`"event_type":"chatmem.conversation.saved"`))
		Expect(string(msg.Value)).To(ContainSubstring(`"message_count":3`))
		Expect(msg.Headers).To(ContainElement(kafkago.Header{
			Key:   "event_type",
			Value: []byte(eventstream.EventTypeConversationSaved),
		}))
	})

	It("wraps writer failures", func() {
		writer.err = errors.New("broker unavailable")
		event := eventstream.NewConversationEvent(eventstream.EventTypeConversationDeleted, "u1", 0)

		err := publisher.PublishConversation(ctx, event)
		Expect(err).To(MatchError(ContainSubstring("broker unavailable")))
		Expect(err).To(MatchError(ContainSubstring(kafka.DefaultTopic)))
	})

	It("closes the underlying writer", func() {
		Expect(publisher.Close()).To(Succeed())
		Expect(writer.closed).To(BeTrue())
	})
})
