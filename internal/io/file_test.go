package ioutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cover.jpg")

	require.NoError(t, WriteFileAtomic(context.Background(), path, []byte("first version, long")))
	require.NoError(t, WriteFileAtomic(context.Background(), path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", "cover.jpg")
	assert.Error(t, WriteFileAtomic(context.Background(), path, []byte("x")))
}

func TestWriteFileAtomic_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "cover.jpg")
	assert.ErrorIs(t, WriteFileAtomic(ctx, path, []byte("x")), context.Canceled)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "MAL_Images")

	require.NoError(t, EnsureDir(path))
	require.NoError(t, EnsureDir(path), "existing directory is not an error")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
