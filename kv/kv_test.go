package kv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("k", "v"))
	v, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "telemetry.json")

	first := NewFileStore(path)
	require.NoError(t, first.Set("consent", "granted"))
	require.NoError(t, first.Set("other", "x"))

	// A fresh instance over the same path sees the values.
	second := NewFileStore(path)
	v, err := second.Get("consent")
	require.NoError(t, err)
	assert.Equal(t, "granted", v)

	_, err = second.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))

	_, err := s.Get("k")
	assert.Error(t, err)
}
