package mq

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecocycle/connect/config"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	queue, err := Open(ctx, config.EventsConfig{Backend: config.EventsNone})
	require.NoError(t, err)
	assert.Nil(t, queue)

	queue, err = Open(ctx, config.EventsConfig{Backend: config.EventsMemory})
	require.NoError(t, err)
	require.NotNil(t, queue)
	assert.IsType(t, &MemoryBackend{}, queue.backend)

	_, err = Open(ctx, config.EventsConfig{Backend: config.EventsRabbitMQ, ConsumerGroup: "mailer"})
	assert.ErrorContains(t, err, "rabbitmq url is required")

	_, err = Open(ctx, config.EventsConfig{Backend: config.EventsRabbitMQ, RabbitMQ: config.RabbitMQConfig{URL: "amqp://localhost:1/"}})
	assert.ErrorContains(t, err, "consumer group is required")

	_, err = Open(ctx, config.EventsConfig{Backend: config.EventsPubSub, ConsumerGroup: "mailer"})
	assert.ErrorContains(t, err, "pubsub project id is required")

	_, err = Open(ctx, config.EventsConfig{Backend: "kafka"})
	assert.Error(t, err)
}

func TestGroupQueue(t *testing.T) {
	assert.Equal(t, "ecocycle-account-events.mailer", groupQueue("ecocycle-account-events", "mailer"))
}

func TestHeadersToAttributes(t *testing.T) {
	assert.Nil(t, headersToAttributes(nil))

	attrs := headersToAttributes(amqp.Table{
		"type":    "account.registered",
		"raw":     []byte("bytes"),
		"attempt": int32(3),
	})
	assert.Equal(t, map[string]string{
		"type":    "account.registered",
		"raw":     "bytes",
		"attempt": "3",
	}, attrs)
}
