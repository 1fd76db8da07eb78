package wal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidHeader is returned when an existing journal file does not start
// with a recognizable header.
var ErrInvalidHeader = errors.New("wal: invalid journal header")

var (
	walMagic         = [4]byte{'K', 'S', 'W', '0'}
	walHeaderVersion = uint16(1)
	walHeaderLen     = 16
)

// Layout: [Magic:4][Version:2][Flags:2][Level:1][Reserved:7]
type walHeader struct {
	Compressed       bool
	CompressionLevel int
}

const flagCompressed = 1

func writeHeader(w io.Writer, h walHeader) (int64, error) {
	buf := make([]byte, walHeaderLen)
	copy(buf[0:4], walMagic[:])
	binary.LittleEndian.PutUint16(buf[4:6], walHeaderVersion)

	if h.Compressed {
		binary.LittleEndian.PutUint16(buf[6:8], flagCompressed)
		buf[8] = uint8(h.CompressionLevel) //nolint:gosec // levels are 1-22
	}

	if _, err := w.Write(buf); err != nil {
		return 0, fmt.Errorf("write journal header: %w", err)
	}

	return int64(walHeaderLen), nil
}

func readHeader(r io.Reader) (walHeader, error) {
	buf := make([]byte, walHeaderLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return walHeader{}, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}

	if [4]byte(buf[0:4]) != walMagic {
		return walHeader{}, fmt.Errorf("%w: bad magic %q", ErrInvalidHeader, buf[0:4])
	}

	if v := binary.LittleEndian.Uint16(buf[4:6]); v != walHeaderVersion {
		return walHeader{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidHeader, v)
	}

	flags := binary.LittleEndian.Uint16(buf[6:8])

	return walHeader{
		Compressed:       flags&flagCompressed != 0,
		CompressionLevel: int(buf[8]),
	}, nil
}
