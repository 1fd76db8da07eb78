package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNewline is returned when a codec produced a record containing a newline.
	ErrNewline = errors.New("codec: encoded record contains a newline")

	// ErrDecode is wrapped by every ReadRecord error caused by a malformed
	// line rather than by the underlying reader.
	ErrDecode = errors.New("codec: malformed record")
)

// LineWriter writes one encoded record per line.
type LineWriter struct {
	w     *bufio.Writer
	codec Codec
	lines int
}

// NewLineWriter returns a LineWriter that encodes with c (codec.Default if nil).
func NewLineWriter(w io.Writer, c Codec) *LineWriter {
	if c == nil {
		c = Default
	}
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	return &LineWriter{w: bw, codec: c}
}

// WriteRecord encodes v and writes it followed by '\n'.
func (lw *LineWriter) WriteRecord(v any) error {
	b, err := lw.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("codec %s: %w", lw.codec.Name(), err)
	}
	if bytes.IndexByte(b, '\n') >= 0 {
		return ErrNewline
	}
	if _, err := lw.w.Write(b); err != nil {
		return err
	}
	if err := lw.w.WriteByte('\n'); err != nil {
		return err
	}
	lw.lines++
	return nil
}

// Lines returns the number of records written so far.
func (lw *LineWriter) Lines() int {
	return lw.lines
}

// Flush writes any buffered data to the underlying writer.
func (lw *LineWriter) Flush() error {
	return lw.w.Flush()
}

// LineReader reads one encoded record per line.
type LineReader struct {
	r     *bufio.Reader
	codec Codec
	line  int
}

// NewLineReader returns a LineReader that decodes with c (codec.Default if nil).
// If r is already a *bufio.Reader it is used directly, so a caller may read
// the first line itself and hand the same reader on.
func NewLineReader(r io.Reader, c Codec) *LineReader {
	if c == nil {
		c = Default
	}
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &LineReader{r: br, codec: c}
}

// Line returns the 1-based number of the last line read, or 0 before the
// first read.
func (lr *LineReader) Line() int {
	return lr.line
}

// Codec returns the codec used for decoding.
func (lr *LineReader) Codec() Codec {
	return lr.codec
}

// ReadLine returns the next line without its terminator. It returns io.EOF
// when the input is exhausted. A final line without '\n' is still returned.
func (lr *LineReader) ReadLine() ([]byte, error) {
	b, err := lr.r.ReadBytes('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) || len(b) == 0 {
			return nil, err
		}
	}
	lr.line++
	b = bytes.TrimSuffix(b, []byte{'\n'})
	b = bytes.TrimSuffix(b, []byte{'\r'})
	return b, nil
}

// ReadRecord reads the next line and decodes it into v.
func (lr *LineReader) ReadRecord(v any) error {
	b, err := lr.ReadLine()
	if err != nil {
		return err
	}
	if err := lr.codec.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, lr.codec.Name(), err)
	}
	return nil
}
