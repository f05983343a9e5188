package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ecocycle/connect/config"
)

const (
	exchangeKind   = "topic"
	bindAll        = "#"
	defaultRouting = "event"
)

// RabbitMQClient maps each channel to a topic exchange. Consumers read from
// a queue named after their group, bound to every routing key. Publishers
// declare the queue of the configured group so events wait for a consumer
// that is not running yet.
type RabbitMQClient struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	cfg   config.RabbitMQConfig
	group string

	// amqp channels must not publish concurrently.
	mu       sync.Mutex
	declared map[string]bool
}

// NewRabbitMQClient dials RabbitMQ and opens one channel.
func NewRabbitMQClient(cfg config.RabbitMQConfig, group string) (*RabbitMQClient, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}
	if strings.TrimSpace(group) == "" {
		return nil, errors.New("rabbitmq consumer group is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if cfg.PrefetchCount > 0 {
		if err := ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, err
		}
	}

	return &RabbitMQClient{
		conn:     conn,
		ch:       ch,
		cfg:      cfg,
		group:    group,
		declared: make(map[string]bool),
	}, nil
}

// Publish routes data by its "type" attribute.
func (r *RabbitMQClient) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("rabbitmq channel is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.declareLocked(channel); err != nil {
		return "", err
	}

	routingKey := attrs["type"]
	if routingKey == "" {
		routingKey = defaultRouting
	}
	headers := make(amqp.Table, len(attrs))
	for key, value := range attrs {
		headers[key] = value
	}

	id := uuid.NewString()
	err := r.ch.PublishWithContext(ctx, channel, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    id,
		Timestamp:    time.Now().UTC(),
		Type:         attrs["type"],
		Headers:      headers,
		Body:         data,
	})
	if err != nil {
		return "", fmt.Errorf("publish to %s: %w", channel, err)
	}
	return id, nil
}

// Subscribe consumes the group queue of channel. A failed message is
// requeued once and dropped when it fails again.
func (r *RabbitMQClient) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("rabbitmq channel is required")
	}

	r.mu.Lock()
	queue, err := r.declareLocked(channel)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	tag := r.group + "-" + uuid.NewString()
	deliveries, err := r.ch.Consume(queue, tag, false, false, false, false, nil)
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue, err)
	}
	defer func() {
		_ = r.ch.Cancel(tag, false)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			msg := Message{ID: d.MessageId, Data: d.Body, Attributes: headersToAttributes(d.Headers)}
			if err := handler(ctx, msg); err != nil {
				_ = d.Nack(false, !d.Redelivered)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (r *RabbitMQClient) Close() error {
	if r.ch != nil {
		_ = r.ch.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// declareLocked sets up the exchange of channel and the group queue bound to
// it, once per client. It returns the queue name.
func (r *RabbitMQClient) declareLocked(channel string) (string, error) {
	queue := groupQueue(channel, r.group)
	if r.declared[channel] {
		return queue, nil
	}

	if err := r.ch.ExchangeDeclare(channel, exchangeKind, r.cfg.QueueDurable, r.cfg.QueueAutoDelete, false, false, nil); err != nil {
		return "", fmt.Errorf("declare exchange %s: %w", channel, err)
	}
	if _, err := r.ch.QueueDeclare(queue, r.cfg.QueueDurable, r.cfg.QueueAutoDelete, false, false, nil); err != nil {
		return "", fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := r.ch.QueueBind(queue, bindAll, channel, false, nil); err != nil {
		return "", fmt.Errorf("bind queue %s: %w", queue, err)
	}
	r.declared[channel] = true
	return queue, nil
}

func groupQueue(channel, group string) string {
	return channel + "." + group
}

func headersToAttributes(headers amqp.Table) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(headers))
	for key, value := range headers {
		switch v := value.(type) {
		case string:
			attrs[key] = v
		case []byte:
			attrs[key] = string(v)
		default:
			attrs[key] = fmt.Sprint(v)
		}
	}
	return attrs
}
