package persistence

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how a saved model is compressed.
type Compression int

const (
	// CompressionNone stores the record stream as is.
	CompressionNone Compression = iota
	// CompressionZstd stores a zstd frame.
	CompressionZstd
	// CompressionLZ4 stores an LZ4 frame.
	CompressionLZ4
)

var compressionNames = [...]string{"none", "zstd", "lz4"}

// String implements fmt.Stringer.
func (c Compression) String() string {
	if c < 0 || int(c) >= len(compressionNames) {
		return fmt.Sprintf("Compression(%d)", int(c))
	}
	return compressionNames[c]
}

// ParseCompression maps a name ("none", "zstd", "lz4") to a Compression.
// The empty string means CompressionNone.
func ParseCompression(name string) (Compression, error) {
	if name == "" {
		return CompressionNone, nil
	}
	for i, n := range compressionNames {
		if n == name {
			return Compression(i), nil
		}
	}
	return 0, fmt.Errorf("persistence: unknown compression %q", name)
}

// Frame magic numbers as they appear on disk (little-endian).
var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

// DetectCompression inspects the first bytes of a stored model.
func DetectCompression(prefix []byte) Compression {
	switch {
	case bytes.HasPrefix(prefix, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(prefix, lz4Magic):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// newCompressWriter wraps w. Closing the result finishes the frame but does
// not close w. level 0 selects the codec default.
func newCompressWriter(w io.Writer, c Compression, level int) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionZstd:
		var opts []zstd.EOption
		if level > 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
		return zstd.NewWriter(w, opts...)
	case CompressionLZ4:
		lw := lz4.NewWriter(w)
		if level > 0 {
			if err := lw.Apply(lz4.CompressionLevelOption(lz4Levels[min(level, len(lz4Levels)-1)])); err != nil {
				return nil, err
			}
		}
		return lw, nil
	default:
		return nil, fmt.Errorf("persistence: unknown compression %s", c)
	}
}

// newDecompressReader detects the compression of r from its first bytes and
// returns a reader of the uncompressed stream.
func newDecompressReader(r io.Reader) (io.ReadCloser, Compression, error) {
	br := bufio.NewReader(r)

	// A short or empty input is passed through; the record decoder reports it.
	prefix, _ := br.Peek(len(zstdMagic))

	switch c := DetectCompression(prefix); c {
	case CompressionZstd:
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, c, err
		}
		return dec.IOReadCloser(), c, nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(br)), c, nil
	default:
		return io.NopCloser(br), c, nil
	}
}
