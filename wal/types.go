package wal

import (
	"github.com/hupe1980/kernelscore/codec"
	"github.com/hupe1980/kernelscore/feature"
)

// DurabilityMode defines the fsync behavior for journal writes.
type DurabilityMode int

const (
	// DurabilityAsync flushes to the OS but never fsyncs.
	// Updates may be lost on a machine crash.
	DurabilityAsync DurabilityMode = iota

	// DurabilitySync fsyncs after every appended update.
	DurabilitySync
)

// Entry is a single journaled online update.
type Entry struct {
	SeqNum       uint64 // Sequence number for ordering
	Gradient     float64
	LearningRate float64
	Features     *feature.Vector
}

// Options contains configuration for the journal.
type Options struct {
	// Path is the directory where the journal file is stored.
	Path string

	// FileName is the journal file name inside Path.
	FileName string

	// Compress enables zstd compression of the entry stream.
	Compress bool

	// CompressionLevel sets the zstd compression level (1-22).
	CompressionLevel int

	// DurabilityMode controls fsync behavior.
	DurabilityMode DurabilityMode

	// Codec encodes the feature payload of each entry.
	Codec codec.Codec
}

// DefaultOptions returns default journal options.
var DefaultOptions = Options{
	Path:             ".",
	FileName:         "updates.wal",
	Compress:         false,
	CompressionLevel: 3,
	DurabilityMode:   DurabilityAsync,
	Codec:            codec.Default,
}
