package persistence

import (
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/kernelscore"
	"github.com/hupe1980/kernelscore/blobstore"
)

// Options configures Save.
type Options struct {
	// Compression selects the frame format. Defaults to CompressionNone.
	Compression Compression

	// Level is the codec specific compression level. 0 selects the default.
	Level int
}

// OpenOptions configures Open.
type OpenOptions struct {
	// ModelOptions are passed to kernelscore.Read.
	ModelOptions []kernelscore.Option

	// Checksum, if set, is compared against the CRC32 of the uncompressed
	// stream (see Info.Checksum).
	Checksum *uint32
}

// WithChecksum makes Open verify the uncompressed stream against sum.
func WithChecksum(sum uint32) func(*OpenOptions) {
	return func(o *OpenOptions) {
		o.Checksum = &sum
	}
}

// WithModelOptions passes opts to the decoded model.
func WithModelOptions(opts ...kernelscore.Option) func(*OpenOptions) {
	return func(o *OpenOptions) {
		o.ModelOptions = append(o.ModelOptions, opts...)
	}
}

// Info describes a saved model.
type Info struct {
	Name        string
	Compression Compression
	Records     int64
	RawBytes    int64
	StoredBytes int64
	Checksum    uint32
}

// Save writes m to store under name. The blob becomes visible only when the
// whole model has been written; on error it is discarded.
//
// m must not be modified concurrently. Use Manager.Snapshot for a model
// shared through kernelscore.Guarded.
func Save(ctx context.Context, store blobstore.BlobStore, name string, m *kernelscore.KernelModel, optFns ...func(*Options)) (Info, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	info := Info{Name: name, Compression: opts.Compression}

	if err := ctx.Err(); err != nil {
		return info, err
	}

	blob, err := store.Create(ctx, name)
	if err != nil {
		return info, fmt.Errorf("persistence: create %s: %w", name, err)
	}

	stored := &countingWriter{w: blob}
	cw, err := newCompressWriter(stored, opts.Compression, opts.Level)
	if err != nil {
		_ = blob.Abort()
		return info, err
	}

	raw := NewChecksumWriter(cw)
	if err := m.Save(raw); err != nil {
		_ = cw.Close()
		_ = blob.Abort()
		return info, fmt.Errorf("persistence: save %s: %w", name, err)
	}
	if err := cw.Close(); err != nil {
		_ = blob.Abort()
		return info, fmt.Errorf("persistence: finish %s frame: %w", opts.Compression, err)
	}
	if err := blob.Close(); err != nil {
		return info, fmt.Errorf("persistence: commit %s: %w", name, err)
	}

	info.Records = m.Header().NumRecords
	info.RawBytes = raw.Len()
	info.StoredBytes = stored.n
	info.Checksum = raw.Sum()
	return info, nil
}

// Open reads the model stored under name.
func Open(ctx context.Context, store blobstore.BlobStore, name string, optFns ...func(*OpenOptions)) (*kernelscore.KernelModel, error) {
	m, _, err := Inspect(ctx, store, name, optFns...)
	return m, err
}

// Stat reads the blob stored under name and reports its Info without
// keeping the model.
func Stat(ctx context.Context, store blobstore.BlobStore, name string) (Info, error) {
	_, info, err := Inspect(ctx, store, name)
	return info, err
}

// Inspect reads the model stored under name and reports its Info. The blob
// is fetched and decoded once; the checksum and byte counts cover the whole
// blob, including bytes after the last record.
func Inspect(ctx context.Context, store blobstore.BlobStore, name string, optFns ...func(*OpenOptions)) (*kernelscore.KernelModel, Info, error) {
	opts := OpenOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	info := Info{Name: name}

	if err := ctx.Err(); err != nil {
		return nil, info, err
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, info, fmt.Errorf("persistence: open %s: %w", name, err)
	}
	defer func() { _ = blob.Close() }()

	stored := &countingReader{r: blob}
	dr, c, err := newDecompressReader(stored)
	if err != nil {
		return nil, info, fmt.Errorf("persistence: open %s frame: %w", c, err)
	}
	defer func() { _ = dr.Close() }()
	info.Compression = c

	cr := NewChecksumReader(dr)
	m, err := kernelscore.Read(cr, opts.ModelOptions...)
	if err != nil {
		return nil, info, fmt.Errorf("persistence: read %s: %w", name, err)
	}
	if _, err := io.Copy(io.Discard, cr); err != nil {
		return nil, info, fmt.Errorf("persistence: read %s: %w", name, err)
	}
	// Count trailing bytes the decompressor left unread.
	if _, err := io.Copy(io.Discard, stored); err != nil {
		return nil, info, fmt.Errorf("persistence: read %s: %w", name, err)
	}

	info.Records = m.Header().NumRecords
	info.Checksum = cr.Sum()
	info.RawBytes = cr.Len()
	info.StoredBytes = stored.n

	if opts.Checksum != nil {
		if err := cr.Verify(*opts.Checksum); err != nil {
			return nil, info, fmt.Errorf("persistence: %s: %w", name, err)
		}
	}

	return m, info, nil
}
