package backend_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatmem/pkg/config"
	"github.com/papercomputeco/chatmem/pkg/eventstream/backend"
	"github.com/papercomputeco/chatmem/pkg/eventstream/kafka"
	"github.com/papercomputeco/chatmem/pkg/eventstream/nop"
	"github.com/papercomputeco/chatmem/pkg/logger"
)

var _ = Describe("Open", func() {
	It("returns a no-op publisher when no provider is set", func() {
		p, err := backend.Open(&config.Config{}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(BeAssignableToTypeOf(&nop.Publisher{}))
	})

	It("returns a no-op publisher for none", func() {
		cfg := &config.Config{EventStream: config.EventStreamConfig{Provider: "NONE"}}
		p, err := backend.Open(cfg, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(BeAssignableToTypeOf(&nop.Publisher{}))
	})

	It("opens a kafka publisher", func() {
		cfg := &config.Config{EventStream: config.EventStreamConfig{
			Provider: "kafka",
			Brokers:  []string{"localhost:9092"},
			Topic:    "events",
		}}
		p, err := backend.Open(cfg, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(BeAssignableToTypeOf(&kafka.Publisher{}))
		Expect(p.Close()).To(Succeed())
	})

	It("rejects kafka without brokers", func() {
		cfg := &config.Config{EventStream: config.EventStreamConfig{Provider: "kafka"}}
		_, err := backend.Open(cfg, logger.Nop())
		Expect(err).To(MatchError(kafka.ErrNoBrokers))
	})

	It("rejects unknown providers", func() {
		cfg := &config.Config{EventStream: config.EventStreamConfig{Provider: "nats"}}
		_, err := backend.Open(cfg, logger.Nop())
		Expect(err).To(MatchError(ContainSubstring(`unknown eventstream provider: "nats"`)))
	})
})
