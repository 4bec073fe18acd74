// Package backend opens the event publisher selected by configuration.
package backend

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/papercomputeco/chatmem/pkg/config"
	"github.com/papercomputeco/chatmem/pkg/eventstream"
	"github.com/papercomputeco/chatmem/pkg/eventstream/kafka"
	"github.com/papercomputeco/chatmem/pkg/eventstream/nop"
)

// Supported event stream providers.
const (
	ProviderNone  = "none"
	ProviderKafka = "kafka"
)

// Open creates the eventstream.Publisher named by cfg.EventStream.Provider.
// An empty provider or "none" disables publishing with a no-op publisher.
func Open(cfg *config.Config, log *slog.Logger) (eventstream.Publisher, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.EventStream.Provider))

	switch provider {
	case "", ProviderNone:
		return nop.NewPublisher(), nil

	case ProviderKafka:
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: cfg.EventStream.Brokers,
			Topic:   cfg.EventStream.Topic,
			Logger:  log,
		})
		if err != nil {
			return nil, err
		}
		log.Info("publishing conversation events to kafka",
			"brokers", strings.Join(cfg.EventStream.Brokers, ","),
			"topic", cfg.EventStream.Topic,
		)
		return p, nil

	default:
		return nil, fmt.Errorf("unknown eventstream provider: %q (available: %s, %s)",
			cfg.EventStream.Provider, ProviderNone, ProviderKafka)
	}
}
