package wal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/kernelscore/feature"
)

// ErrCorruptEntry is returned when an entry is structurally invalid.
var ErrCorruptEntry = errors.New("wal: corrupt entry")

const (
	entryFixedLen  = 28       // SeqNum + Gradient + LearningRate + PayloadLen
	maxPayloadSize = 64 << 20 // upper bound on a single encoded feature vector
)

// encodeEntry writes an entry in binary format.
// Format: [SeqNum:8][Gradient:8][LearningRate:8][PayloadLen:4][Payload:N]
func (w *WAL) encodeEntry(entry *Entry) error {
	fv := entry.Features
	if fv == nil {
		fv = &feature.Vector{}
	}

	payload, err := w.codec.Marshal(fv)
	if err != nil {
		return fmt.Errorf("encode features: %w", err)
	}

	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload of %d bytes exceeds limit", ErrCorruptEntry, len(payload))
	}

	var fixed [entryFixedLen]byte
	binary.LittleEndian.PutUint64(fixed[0:8], entry.SeqNum)
	binary.LittleEndian.PutUint64(fixed[8:16], math.Float64bits(entry.Gradient))
	binary.LittleEndian.PutUint64(fixed[16:24], math.Float64bits(entry.LearningRate))
	binary.LittleEndian.PutUint32(fixed[24:28], uint32(len(payload))) //nolint:gosec // bounded above

	if _, err := w.writer.Write(fixed[:]); err != nil {
		return err
	}

	_, err = w.writer.Write(payload)

	return err
}

// decodeEntry reads one entry. It returns io.EOF on a clean end of stream and
// io.ErrUnexpectedEOF when the stream ends inside an entry.
func (w *WAL) decodeEntry(reader io.Reader, entry *Entry) error {
	var fixed [entryFixedLen]byte
	if _, err := io.ReadFull(reader, fixed[:]); err != nil {
		return err
	}

	entry.SeqNum = binary.LittleEndian.Uint64(fixed[0:8])
	entry.Gradient = math.Float64frombits(binary.LittleEndian.Uint64(fixed[8:16]))
	entry.LearningRate = math.Float64frombits(binary.LittleEndian.Uint64(fixed[16:24]))

	n := binary.LittleEndian.Uint32(fixed[24:28])
	if n > maxPayloadSize {
		return fmt.Errorf("%w: seq %d payload length %d", ErrCorruptEntry, entry.SeqNum, n)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(reader, payload); err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}

	fv := &feature.Vector{}
	if err := w.codec.Unmarshal(payload, fv); err != nil {
		return fmt.Errorf("%w: seq %d: %w", ErrCorruptEntry, entry.SeqNum, err)
	}
	entry.Features = fv

	return nil
}

func (w *WAL) flushLocked() error {
	if err := w.bufWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}
	if w.compressed {
		if err := w.compressor.Flush(); err != nil {
			return fmt.Errorf("failed to flush compressor: %w", err)
		}
	}
	return nil
}
