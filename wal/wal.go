// Package wal provides a write-ahead journal of online model updates.
//
// Every accepted update is appended to the journal before it is applied to
// the in-memory model. After a crash the journal is replayed on top of the
// last saved model; after a successful save it is checkpointed (truncated).
//
// Features:
//   - Binary entries carrying gradient, learning rate and the feature vector
//   - Optional zstd compression of the entry stream
//   - Configurable fsync behavior (DurabilityAsync, DurabilitySync)
//   - A torn final entry ends replay instead of failing it
package wal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/hupe1980/kernelscore/codec"
	"github.com/hupe1980/kernelscore/feature"
	"github.com/klauspost/compress/zstd"
)

// ErrClosed is returned by operations on a closed journal.
var ErrClosed = errors.New("wal: journal closed")

// WAL is an append-only journal of online updates.
type WAL struct {
	mu               sync.Mutex
	file             *os.File
	writer           io.Writer     // May be compressed or direct
	bufWriter        *bufio.Writer // Buffered writer for performance
	compressor       *zstd.Encoder
	decompressor     *zstd.Decoder
	codec            codec.Codec
	seqNum           uint64
	filePath         string
	compressed       bool
	compressionLevel int
	dataOffset       int64 // start of entry stream (after header)
	durabilityMode   DurabilityMode
}

// FilePath returns the path to the journal file.
func (w *WAL) FilePath() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.filePath
}

// New opens the journal, creating it if it does not exist.
//
// The compression setting of an existing journal is taken from its header;
// Options.Compress only applies to new files.
func New(optFns ...func(o *Options)) (*WAL, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Codec == nil {
		opts.Codec = codec.Default
	}

	if err := os.MkdirAll(opts.Path, 0750); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	filePath := filepath.Join(opts.Path, opts.FileName)

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR, 0600) //nolint:gosec // G304: Path is configurable
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}

	st, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat journal file: %w", err)
	}

	w := &WAL{
		file:             file,
		codec:            opts.Codec,
		filePath:         filePath,
		compressionLevel: opts.CompressionLevel,
		durabilityMode:   opts.DurabilityMode,
	}

	if st.Size() == 0 {
		err = w.writeNewHeader(opts.Compress)
	} else {
		err = w.readExistingHeader()
	}
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	if w.compressed {
		decompressor, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to create decompressor: %w", err)
		}
		w.decompressor = decompressor
	}

	// Determine the next sequence number and position at the end.
	if err := w.scanForSeqNum(); err != nil {
		w.closeDecompressor()
		_ = w.file.Close()
		return nil, fmt.Errorf("failed to scan journal: %w", err)
	}

	if err := w.resetWriterLocked(); err != nil {
		w.closeDecompressor()
		_ = w.file.Close()
		return nil, err
	}

	return w, nil
}

func (w *WAL) writeNewHeader(compress bool) error {
	hdrLen, err := writeHeader(w.file, walHeader{
		Compressed:       compress,
		CompressionLevel: w.compressionLevel,
	})
	if err != nil {
		return err
	}
	w.dataOffset = hdrLen
	w.compressed = compress
	return nil
}

func (w *WAL) readExistingHeader() error {
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek journal: %w", err)
	}
	h, err := readHeader(w.file)
	if err != nil {
		return err
	}
	w.dataOffset = int64(walHeaderLen)
	w.compressed = h.Compressed
	if h.Compressed {
		w.compressionLevel = h.CompressionLevel
	}
	return nil
}

// resetWriterLocked creates the write path at the current file offset.
// A compressed journal starts a new zstd frame on every reset.
func (w *WAL) resetWriterLocked() error {
	if w.compressed {
		level := zstd.EncoderLevelFromZstd(w.compressionLevel)
		compressor, err := zstd.NewWriter(w.file, zstd.WithEncoderLevel(level))
		if err != nil {
			return fmt.Errorf("failed to create compressor: %w", err)
		}
		w.compressor = compressor
		w.bufWriter = bufio.NewWriter(compressor)
	} else {
		w.bufWriter = bufio.NewWriter(w.file)
	}
	w.writer = w.bufWriter
	return nil
}

func (w *WAL) entryReaderLocked() (io.Reader, error) {
	if _, err := w.file.Seek(w.dataOffset, io.SeekStart); err != nil {
		return nil, err
	}
	if w.compressed {
		if err := w.decompressor.Reset(w.file); err != nil {
			return nil, fmt.Errorf("failed to reset decompressor: %w", err)
		}
		return w.decompressor, nil
	}
	return bufio.NewReader(w.file), nil
}

// scanForSeqNum finds the highest sequence number so that new entries follow
// the last complete one. A torn tail of an uncompressed journal is cut off.
// A compressed journal is rewritten as a single terminated frame holding its
// complete entries, since a frame left open by an unclean shutdown cannot be
// followed by another frame.
func (w *WAL) scanForSeqNum() error {
	reader, err := w.entryReaderLocked()
	if err != nil {
		return err
	}

	cr := &countingReader{r: reader}
	good := int64(0)

	var (
		maxSeqNum uint64
		entries   []Entry
	)

	for {
		var entry Entry
		if err := w.decodeEntry(cr, &entry); err != nil {
			break
		}
		good = cr.n
		maxSeqNum = max(maxSeqNum, entry.SeqNum)
		if w.compressed {
			entries = append(entries, entry)
		}
	}

	w.seqNum = maxSeqNum

	end, err := w.file.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}

	switch {
	case w.compressed && end > w.dataOffset:
		return w.compactLocked(entries)
	case !w.compressed && cr.n != good:
		if err := w.file.Truncate(w.dataOffset + good); err != nil {
			return fmt.Errorf("failed to truncate torn tail: %w", err)
		}
		_, err = w.file.Seek(0, io.SeekEnd)
		return err
	}

	return nil
}

// compactLocked replaces the journal file with a copy holding entries in one
// terminated zstd frame. The copy is written beside the journal and renamed
// over it.
func (w *WAL) compactLocked(entries []Entry) (err error) {
	dir, base := filepath.Split(w.filePath)
	tmp, err := os.CreateTemp(dir, "."+base+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create compaction file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = writeHeader(tmp, walHeader{
		Compressed:       true,
		CompressionLevel: w.compressionLevel,
	}); err != nil {
		return err
	}

	enc, err := zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(w.compressionLevel)))
	if err != nil {
		return fmt.Errorf("failed to create compressor: %w", err)
	}

	bw := bufio.NewWriter(enc)
	prev := w.writer
	w.writer = bw
	for i := range entries {
		if err = w.encodeEntry(&entries[i]); err != nil {
			break
		}
	}
	w.writer = prev
	if err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to rewrite entry: %w", err)
	}

	if err = bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	if err = enc.Close(); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	if err = w.file.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), w.filePath); err != nil {
		return fmt.Errorf("failed to replace journal: %w", err)
	}

	file, err := os.OpenFile(w.filePath, os.O_RDWR, 0600) //nolint:gosec // G304: Path is configurable
	if err != nil {
		return fmt.Errorf("failed to reopen journal: %w", err)
	}
	w.file = file

	_, err = w.file.Seek(0, io.SeekEnd)
	return err
}

func (w *WAL) syncIfNeeded() error {
	if w.durabilityMode == DurabilitySync {
		return w.file.Sync()
	}
	return nil
}

// Append journals one update and returns its sequence number.
func (w *WAL) Append(gradient, learningRate float64, fv *feature.Vector) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, ErrClosed
	}

	entry := Entry{
		SeqNum:       w.seqNum + 1,
		Gradient:     gradient,
		LearningRate: learningRate,
		Features:     fv,
	}

	if err := w.encodeEntry(&entry); err != nil {
		return 0, fmt.Errorf("failed to encode entry: %w", err)
	}

	if err := w.flushLocked(); err != nil {
		return 0, err
	}

	if err := w.syncIfNeeded(); err != nil {
		return 0, err
	}

	w.seqNum = entry.SeqNum

	return entry.SeqNum, nil
}

// Replay calls fn for every complete entry in sequence order. It stops without
// error at a torn final entry and returns the first error fn returns.
func (w *WAL) Replay(fn func(entry Entry) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return ErrClosed
	}

	if err := w.flushLocked(); err != nil {
		return err
	}

	reader, err := w.entryReaderLocked()
	if err != nil {
		return err
	}

	for {
		var entry Entry
		if err := w.decodeEntry(reader, &entry); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return fmt.Errorf("journal corrupted after seq %d: %w", entry.SeqNum, err)
		}

		if err := fn(entry); err != nil {
			return fmt.Errorf("failed to replay entry %d: %w", entry.SeqNum, err)
		}
	}

	_, err = w.file.Seek(0, io.SeekEnd)
	return err
}

// Len returns the number of complete entries in the journal.
func (w *WAL) Len() (int, error) {
	count := 0
	err := w.Replay(func(Entry) error {
		count++
		return nil
	})
	return count, err
}

// SeqNum returns the sequence number of the last appended entry.
func (w *WAL) SeqNum() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seqNum
}

// Checkpoint discards all journaled entries. Call it after the model that
// contains them has been saved.
func (w *WAL) Checkpoint() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return ErrClosed
	}

	if err := w.flushLocked(); err != nil {
		return err
	}

	if w.compressed {
		if err := w.compressor.Close(); err != nil {
			return fmt.Errorf("failed to close compressor: %w", err)
		}
	}

	if err := w.file.Truncate(w.dataOffset); err != nil {
		return fmt.Errorf("failed to truncate journal: %w", err)
	}

	if _, err := w.file.Seek(w.dataOffset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek journal data offset: %w", err)
	}

	// Checkpoint is an explicit durability boundary.
	if err := w.file.Sync(); err != nil {
		return err
	}

	w.seqNum = 0

	return w.resetWriterLocked()
}

// Close flushes pending entries and closes the journal file.
// Closing an already closed journal is a no-op.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}

	if err := w.bufWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}

	if w.compressed && w.compressor != nil {
		if err := w.compressor.Close(); err != nil {
			return fmt.Errorf("failed to close compressor: %w", err)
		}
	}

	w.closeDecompressor()

	err := w.file.Close()
	w.file = nil
	return err
}

func (w *WAL) closeDecompressor() {
	if w.decompressor != nil {
		w.decompressor.Close()
		w.decompressor = nil
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
