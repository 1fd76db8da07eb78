package minio

import (
	"context"
	"io"
	"testing"

	"github.com/hupe1980/kernelscore/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	bucket := "test-kernelscore"

	store, err := Dial("localhost:9000", "minioadmin", "minioadmin", false, bucket, "test-prefix/")
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	// Check if MinIO is reachable
	if _, err := store.client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := store.client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "test.txt", data))

	got, err := blobstore.ReadAll(ctx, store, "test.txt")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "test.txt")

	require.NoError(t, store.Delete(ctx, "test.txt"))

	_, err = store.Open(ctx, "test.txt")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	// Streaming create
	wb, err := store.Create(ctx, "stream.txt")
	require.NoError(t, err)
	_, err = wb.Write([]byte("streamed data"))
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	blob, err := store.Open(ctx, "stream.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(13), blob.Size())
	streamed, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, "streamed data", string(streamed))
	require.NoError(t, blob.Close())

	_ = store.Delete(ctx, "stream.txt")
}
