package credentials

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	backend, err := NewFileBackend(path)
	require.NoError(t, err)

	_, err = backend.Load()
	require.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, backend.Save("abc.def.ghi"))
	got, err := backend.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", got)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(filePerm), info.Mode().Perm())
	}

	require.NoError(t, backend.Save("replaced"))
	got, err = backend.Load()
	require.NoError(t, err)
	assert.Equal(t, "replaced", got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileBackend_Clear(t *testing.T) {
	backend, err := NewFileBackend(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, err)

	require.NoError(t, backend.Clear(), "clearing a missing file is not an error")
	require.NoError(t, backend.Save("tok"))
	require.NoError(t, backend.Clear())

	_, err = backend.Load()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestFileBackend_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	backend, err := NewFileBackend(path)
	require.NoError(t, err)
	_, err = backend.Load()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestNewFileBackend_RequiresPath(t *testing.T) {
	_, err := NewFileBackend("  ")
	assert.Error(t, err)
}

func TestStore_FileTiers(t *testing.T) {
	dir := t.TempDir()
	durable, err := NewFileBackend(filepath.Join(dir, "config", "token"))
	require.NoError(t, err)
	ephemeral, err := NewFileBackend(filepath.Join(dir, "run", "session-1"))
	require.NoError(t, err)
	store := NewStore(durable, ephemeral)

	require.NoError(t, store.Save("session-token", Ephemeral))
	got, ok := store.Read()
	require.True(t, ok)
	assert.Equal(t, "session-token", got)

	store.Clear()
	_, ok = store.Read()
	assert.False(t, ok)
}
