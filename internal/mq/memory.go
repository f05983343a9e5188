package mq

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const memoryBuffer = 64

// ErrClosed is returned by a closed in-process backend.
var ErrClosed = errors.New("mq backend closed")

// MemoryBackend delivers messages between goroutines of one process.
// Messages published while a channel has no subscriber wait for the first
// one. Delivered messages are kept only when recording is enabled.
type MemoryBackend struct {
	mu          sync.Mutex
	closed      bool
	record      bool
	published   map[string][]Message
	pending     map[string][]Message
	subscribers map[string]map[int]chan Message
	nextID      int
}

// MemoryOption configures a MemoryBackend.
type MemoryOption func(*MemoryBackend)

// WithRecording keeps every published message for Published.
func WithRecording() MemoryOption {
	return func(b *MemoryBackend) {
		b.record = true
	}
}

func NewMemoryBackend(opts ...MemoryOption) *MemoryBackend {
	b := &MemoryBackend{
		published:   make(map[string][]Message),
		pending:     make(map[string][]Message),
		subscribers: make(map[string]map[int]chan Message),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish records the message and hands it to current subscribers. It blocks
// while a subscriber's buffer is full.
func (b *MemoryBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("memory channel is required")
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return "", ErrClosed
	}
	msg := Message{ID: uuid.NewString(), Data: append([]byte(nil), data...), Attributes: attrs}
	if b.record {
		b.published[channel] = append(b.published[channel], msg)
	}
	if len(b.subscribers[channel]) == 0 {
		b.pending[channel] = append(b.pending[channel], msg)
		b.mu.Unlock()
		return msg.ID, nil
	}
	targets := make([]chan Message, 0, len(b.subscribers[channel]))
	for _, ch := range b.subscribers[channel] {
		targets = append(targets, ch)
	}
	b.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- msg:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return msg.ID, nil
}

// Subscribe handles messages published after the call until ctx is done.
// Failed messages are redelivered once.
func (b *MemoryBackend) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("memory channel is required")
	}

	ch := make(chan Message, memoryBuffer)
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	id := b.nextID
	b.nextID++
	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[int]chan Message)
	}
	b.subscribers[channel][id] = ch
	backlog := b.pending[channel]
	delete(b.pending, channel)
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.subscribers[channel], id)
		b.mu.Unlock()
	}()

	for _, msg := range backlog {
		deliver(ctx, handler, msg)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-ch:
			deliver(ctx, handler, msg)
		}
	}
}

func deliver(ctx context.Context, handler Handler, msg Message) {
	if err := handler(ctx, msg); err != nil {
		_ = handler(ctx, msg)
	}
}

// Published returns the messages sent to channel so far. It is empty unless
// the backend was built WithRecording.
func (b *MemoryBackend) Published(channel string) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Message(nil), b.published[channel]...)
}

func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
