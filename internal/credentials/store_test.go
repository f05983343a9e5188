package credentials

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveThenRead(t *testing.T) {
	tests := []struct {
		name  string
		token string
		tier  Tier
	}{
		{"durable", "tok-durable", Durable},
		{"ephemeral", "tok-ephemeral", Ephemeral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			require.NoError(t, store.Save(tt.token, tt.tier))

			got, ok := store.Read()
			require.True(t, ok)
			assert.Equal(t, tt.token, got)

			peeked, ok := store.Peek(tt.tier)
			require.True(t, ok)
			assert.Equal(t, tt.token, peeked)
		})
	}
}

func TestStore_SaveLeavesOtherTier(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save("old", Ephemeral))
	require.NoError(t, store.Save("new", Durable))

	stale, ok := store.Peek(Ephemeral)
	require.True(t, ok)
	assert.Equal(t, "old", stale)
}

func TestStore_Discard(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save("a", Durable))
	require.NoError(t, store.Save("b", Ephemeral))

	store.Discard(Durable)

	got, ok := store.Read()
	require.True(t, ok)
	assert.Equal(t, "b", got)
}

func TestStore_ReadPrefersDurable(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save("session", Ephemeral))
	require.NoError(t, store.Save("remembered", Durable))

	got, ok := store.Read()
	require.True(t, ok)
	assert.Equal(t, "remembered", got)
}

func TestStore_ReadEmpty(t *testing.T) {
	store := NewMemoryStore()
	_, ok := store.Read()
	assert.False(t, ok)
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save("a", Durable))
	require.NoError(t, store.Save("b", Ephemeral))

	store.Clear()
	store.Clear()

	_, ok := store.Read()
	assert.False(t, ok)
	_, ok = store.Peek(Durable)
	assert.False(t, ok)
	_, ok = store.Peek(Ephemeral)
	assert.False(t, ok)
}

type failingBackend struct{}

func (failingBackend) Load() (string, error) { return "", errors.New("disk on fire") }
func (failingBackend) Save(string) error     { return errors.New("disk on fire") }
func (failingBackend) Clear() error          { return errors.New("disk on fire") }

func TestStore_BackendFailures(t *testing.T) {
	store := NewStore(failingBackend{}, NewMemoryBackend())

	err := store.Save("tok", Durable)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save durable token")

	require.NoError(t, store.Save("tok", Ephemeral))
	got, ok := store.Read()
	require.True(t, ok)
	assert.Equal(t, "tok", got)

	assert.NotPanics(t, store.Clear)
	_, ok = store.Peek(Ephemeral)
	assert.False(t, ok)
}

func TestStore_UnknownTier(t *testing.T) {
	store := NewMemoryStore()
	assert.Error(t, store.Save("tok", Tier(7)))
	assert.Equal(t, "tier(7)", Tier(7).String())
}
