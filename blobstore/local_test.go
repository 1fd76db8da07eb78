package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreContract exercises the behavior every BlobStore must provide.
func testStoreContract(t *testing.T, store BlobStore) {
	ctx := context.Background()

	t.Run("Create and Open", func(t *testing.T) {
		data := []byte("hello world, this is a test blob")

		w, err := store.Create(ctx, "models/a.jsonl")
		require.NoError(t, err)

		n, err := w.Write(data)
		require.NoError(t, err)
		require.Equal(t, len(data), n)

		// Not visible before Close.
		_, err = store.Open(ctx, "models/a.jsonl")
		require.True(t, errors.Is(err, ErrNotFound), "got %v", err)

		require.NoError(t, w.Close())

		blob, err := store.Open(ctx, "models/a.jsonl")
		require.NoError(t, err)
		defer blob.Close()

		assert.Equal(t, int64(len(data)), blob.Size())

		got, err := io.ReadAll(blob)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("Abort discards", func(t *testing.T) {
		w, err := store.Create(ctx, "aborted")
		require.NoError(t, err)
		_, err = w.Write([]byte("partial"))
		require.NoError(t, err)

		require.NoError(t, w.Abort())
		require.NoError(t, w.Close())

		_, err = store.Open(ctx, "aborted")
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})

	t.Run("Put replaces", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "models/b.jsonl", []byte("v1")))
		require.NoError(t, store.Put(ctx, "models/b.jsonl", []byte("version 2")))

		got, err := ReadAll(ctx, store, "models/b.jsonl")
		require.NoError(t, err)
		assert.Equal(t, "version 2", string(got))
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "other", []byte("x")))

		names, err := store.List(ctx, "models/")
		require.NoError(t, err)
		assert.Equal(t, []string{"models/a.jsonl", "models/b.jsonl"}, names)

		all, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"models/a.jsonl", "models/b.jsonl", "other"}, all)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "other"))
		require.NoError(t, store.Delete(ctx, "other"))

		_, err := store.Open(ctx, "other")
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})

	t.Run("Open missing", func(t *testing.T) {
		_, err := ReadAll(ctx, store, "does-not-exist")
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})
}

func TestLocalBlobStore_Contract(t *testing.T) {
	testStoreContract(t, NewLocalStore(t.TempDir()))
}

func TestLocalBlobStore_Layout(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	w, err := store.Create(ctx, "nested/dir/model.jsonl")
	require.NoError(t, err)
	_, err = w.Write([]byte("data"))
	require.NoError(t, err)

	// The temporary file lives next to the target and is hidden from List.
	entries, err := os.ReadDir(filepath.Join(tmpDir, "nested", "dir"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), tmpSuffix))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, w.Close())

	_, err = os.Stat(filepath.Join(tmpDir, "nested", "dir", "model.jsonl"))
	require.NoError(t, err)

	entries, err = os.ReadDir(filepath.Join(tmpDir, "nested", "dir"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalBlobStore_MissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "nope"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalBlobStore_CanceledContext(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Create(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.Open(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
