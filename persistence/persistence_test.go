package persistence

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/kernelscore"
	"github.com/hupe1980/kernelscore/blobstore"
	"github.com/hupe1980/kernelscore/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomModel(seed int64) *kernelscore.KernelModel {
	return testutil.NewRNG(seed).Model(testutil.ModelConfig{
		Families:       3,
		NamesPerFamily: 4,
		SupportVectors: 32,
		Normalize:      true,
	})
}

func TestSaveOpen(t *testing.T) {
	ctx := context.Background()

	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			store := blobstore.NewLocalStore(t.TempDir())
			m := randomModel(1)

			info, err := Save(ctx, store, "model", m, func(o *Options) {
				o.Compression = c
			})
			require.NoError(t, err)
			assert.Equal(t, "model", info.Name)
			assert.Equal(t, c, info.Compression)
			assert.Equal(t, int64(32), info.Records)
			assert.Positive(t, info.RawBytes)
			assert.Positive(t, info.StoredBytes)

			loaded, err := Open(ctx, store, "model", WithChecksum(info.Checksum))
			require.NoError(t, err)
			assert.True(t, m.Equal(loaded))

			stat, err := Stat(ctx, store, "model")
			require.NoError(t, err)
			assert.Equal(t, info, stat)
		})
	}
}

func TestChecksumIndependentOfCompression(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	m := randomModel(2)

	plain, err := Save(ctx, store, "plain", m)
	require.NoError(t, err)
	packed, err := Save(ctx, store, "packed", m, func(o *Options) {
		o.Compression = CompressionZstd
		o.Level = 19
	})
	require.NoError(t, err)

	assert.Equal(t, plain.Checksum, packed.Checksum)
	assert.Equal(t, plain.RawBytes, packed.RawBytes)
	assert.Equal(t, plain.RawBytes, plain.StoredBytes)
	assert.Less(t, packed.StoredBytes, packed.RawBytes)
}

func TestOpenPlainIsLineFormat(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	m := randomModel(3)

	_, err := Save(ctx, store, "model", m)
	require.NoError(t, err)

	data, err := blobstore.ReadAll(ctx, store, "model")
	require.NoError(t, err)
	assert.Equal(t, byte('{'), data[0])

	direct, err := kernelscore.Read(bytes.NewReader(data))
	require.NoError(t, err)
	assert.True(t, m.Equal(direct))
}

func TestOpenChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	info, err := Save(ctx, store, "model", randomModel(4), func(o *Options) {
		o.Compression = CompressionLZ4
	})
	require.NoError(t, err)

	_, err = Open(ctx, store, "model", WithChecksum(info.Checksum+1))
	require.Error(t, err)
	assert.True(t, IsChecksumMismatch(err))
}

type countingStore struct {
	blobstore.BlobStore
	opens int
}

func (s *countingStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	s.opens++
	return s.BlobStore.Open(ctx, name)
}

func TestInspect(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{BlobStore: blobstore.NewMemoryStore()}
	m := randomModel(5)

	saved, err := Save(ctx, store, "model", m, func(o *Options) {
		o.Compression = CompressionZstd
	})
	require.NoError(t, err)

	loaded, info, err := Inspect(ctx, store, "model", WithChecksum(saved.Checksum))
	require.NoError(t, err)
	assert.Equal(t, 1, store.opens)
	assert.Equal(t, saved, info)
	assert.True(t, m.Equal(loaded))

	_, info, err = Inspect(ctx, store, "model", WithChecksum(saved.Checksum+1))
	require.Error(t, err)
	assert.True(t, IsChecksumMismatch(err))
	assert.Equal(t, saved.Checksum, info.Checksum)
	assert.Equal(t, 2, store.opens)
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	_, err := Open(ctx, store, "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, store.Put(ctx, "garbage", []byte("{\"model_header\":{\"model_type\":\"kernel\",\"num_records\":2}}\n")))
	_, err = Open(ctx, store, "garbage")
	assert.ErrorIs(t, err, kernelscore.ErrCorruptRecord)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Open(canceled, store, "garbage")
	assert.ErrorIs(t, err, context.Canceled)
}

type failingCodec struct{}

func (failingCodec) Name() string { return "failing" }

func (failingCodec) Marshal(any) ([]byte, error) { return nil, errors.New("boom") }

func (failingCodec) Unmarshal([]byte, any) error { return errors.New("boom") }

func TestSaveAbortsOnError(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	m := testutil.NewRNG(5).Model(
		testutil.ModelConfig{Families: 1, NamesPerFamily: 1, SupportVectors: 1},
		kernelscore.WithCodec(failingCodec{}),
	)

	_, err := Save(ctx, store, "model", m, func(o *Options) {
		o.Compression = CompressionZstd
	})
	require.Error(t, err)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		name    string
		want    Compression
		wantErr bool
	}{
		{"", CompressionNone, false},
		{"none", CompressionNone, false},
		{"zstd", CompressionZstd, false},
		{"lz4", CompressionLZ4, false},
		{"gzip", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseCompression(tt.name)
		if tt.wantErr {
			assert.Error(t, err, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got)
	}

	assert.Equal(t, "Compression(9)", Compression(9).String())
}

func TestDetectCompression(t *testing.T) {
	assert.Equal(t, CompressionZstd, DetectCompression([]byte{0x28, 0xB5, 0x2F, 0xFD, 0x00}))
	assert.Equal(t, CompressionLZ4, DetectCompression([]byte{0x04, 0x22, 0x4D, 0x18}))
	assert.Equal(t, CompressionNone, DetectCompression([]byte("{\"model_header\"")))
	assert.Equal(t, CompressionNone, DetectCompression(nil))
}
