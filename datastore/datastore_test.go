package datastore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ds.json")
	ds, err := New(path)
	require.NoError(t, err)
	defer ds.Close()

	_, ok := ds.Get("missing")
	assert.False(t, ok)

	ds.Set("key", "value")
	v, ok := ds.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	assert.ElementsMatch(t, []string{"key"}, ds.Keys())
}

func TestCloseFlushesAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ds.json")

	ds, err := New(path)
	require.NoError(t, err)
	ds.Set("greeting", "hello")
	require.NoError(t, ds.Close())

	reloaded, err := New(path)
	require.NoError(t, err)
	defer reloaded.Close()

	v, ok := reloaded.Get("greeting")
	assert.True(t, ok)
	assert.Equal(t, "hello", v)
}

func TestNewRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ds.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := New(path)
	assert.Error(t, err)
}
