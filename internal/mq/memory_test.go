package mq

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu   sync.Mutex
	msgs []Message
}

func (c *collector) handle(_ context.Context, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func TestMemoryBackend_BacklogThenLive(t *testing.T) {
	backend := NewMemoryBackend(WithRecording())
	queue := New(backend)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	id, err := queue.PublishJSON(ctx, "events", map[string]string{"n": "1"}, map[string]string{"type": "first"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	var got collector
	done := make(chan error, 1)
	go func() { done <- queue.Subscribe(ctx, "events", got.handle) }()

	require.Eventually(t, func() bool { return got.len() == 1 }, time.Second, 5*time.Millisecond)

	_, err = queue.Publish(ctx, "events", []byte(`{"n":"2"}`), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return got.len() == 2 }, time.Second, 5*time.Millisecond)

	var first map[string]string
	require.NoError(t, got.msgs[0].Decode(&first))
	assert.Equal(t, "1", first["n"])
	assert.Equal(t, "first", got.msgs[0].Attributes["type"])
	assert.Len(t, backend.Published("events"), 2)
	assert.Empty(t, backend.Published("other"))

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestMemoryBackend_RetriesFailedMessageOnce(t *testing.T) {
	queue := New(NewMemoryBackend())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := queue.Publish(ctx, "events", []byte("x"), nil)
	require.NoError(t, err)

	var mu sync.Mutex
	calls := 0
	go func() {
		_ = queue.Subscribe(ctx, "events", func(context.Context, Message) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			return errors.New("boom")
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 2
	}, time.Second, 5*time.Millisecond)
}

func TestMemoryBackend_DoesNotRetainDeliveredMessages(t *testing.T) {
	backend := NewMemoryBackend()
	queue := New(backend)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got collector
	go func() { _ = queue.Subscribe(ctx, "events", got.handle) }()

	const total = 1000
	for i := 0; i < total; i++ {
		_, err := queue.Publish(ctx, "events", []byte(`{"reset_token":"secret"}`), nil)
		require.NoError(t, err)
	}
	require.Eventually(t, func() bool { return got.len() == total }, 2*time.Second, 5*time.Millisecond)

	assert.Empty(t, backend.Published("events"))
	backend.mu.Lock()
	assert.Empty(t, backend.pending["events"])
	backend.mu.Unlock()
}

func TestMemoryBackend_Closed(t *testing.T) {
	queue := New(NewMemoryBackend())
	require.NoError(t, queue.Close())

	_, err := queue.Publish(context.Background(), "events", nil, nil)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, queue.Subscribe(context.Background(), "events", nil), ErrClosed)

	_, err = New(NewMemoryBackend()).Publish(context.Background(), " ", nil, nil)
	assert.Error(t, err)
}
