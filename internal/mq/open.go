package mq

import (
	"context"
	"fmt"

	"github.com/ecocycle/connect/config"
)

// Open connects the backend selected by cfg. It returns nil when events are
// disabled.
func Open(ctx context.Context, cfg config.EventsConfig) (*MQ, error) {
	switch cfg.Backend {
	case config.EventsNone, "":
		return nil, nil
	case config.EventsMemory:
		return New(NewMemoryBackend()), nil
	case config.EventsRabbitMQ:
		client, err := NewRabbitMQClient(cfg.RabbitMQ, cfg.ConsumerGroup)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		return New(client), nil
	case config.EventsPubSub:
		client, err := NewPubSubClient(ctx, cfg.PubSub, cfg.ConsumerGroup)
		if err != nil {
			return nil, fmt.Errorf("connect pubsub: %w", err)
		}
		return New(client), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}
