package kv

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	in := map[string]any{"askForDownloadPath": true, "proxyMode": "direct"}
	require.NoError(t, s.Set("preferences", in))

	var out map[string]any
	require.NoError(t, s.Get("preferences", &out))
	assert.Equal(t, in, out)

	_, err = os.Stat(filepath.Join(s.Dir(), "preferences.json.tmp"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "temp file should be renamed away")
}

func TestFileStore_MissingKey(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	var out map[string]any
	assert.ErrorIs(t, s.Get("workspaces", &out), ErrNotFound)
}

func TestFileStore_CorruptFile(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	path := filepath.Join(s.Dir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	var out map[string]any
	assert.ErrorIs(t, s.Get("preferences", &out), ErrCorrupt)
}

func TestFileStore_ChecksumMismatch(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	path := filepath.Join(s.Dir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"checksum":"0","data":{"a":1}}`), 0o600))

	var out map[string]any
	assert.ErrorIs(t, s.Get("preferences", &out), ErrCorrupt)
}

func TestFileStore_DeleteAndInvalidKey(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Set("workspaces", map[string]any{}))
	require.NoError(t, s.Delete("workspaces"))
	require.NoError(t, s.Delete("workspaces"))

	var out map[string]any
	assert.ErrorIs(t, s.Get("workspaces", &out), ErrNotFound)
	assert.Error(t, s.Set("../escape", 1))
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	require.NoError(t, m.Set("preferences", map[string]any{"a": "b"}))

	var out map[string]any
	require.NoError(t, m.Get("preferences", &out))
	assert.Equal(t, "b", out["a"])

	m.SetRaw("preferences", []byte("garbage"))
	assert.ErrorIs(t, m.Get("preferences", &out), ErrCorrupt)
	assert.Equal(t, 1, m.Len())
}
