package kernelscore

import (
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/kernelscore/codec"
	"github.com/hupe1980/kernelscore/model"
)

// ReadHeader reads the first record of a saved model and returns its header.
//
// An empty input or a first line that is not a header record yields a
// DecodeError for line 1.
func ReadHeader(r *codec.LineReader) (*model.Header, error) {
	var rec model.Record
	if err := r.ReadRecord(&rec); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			return nil, &DecodeError{Line: 1, cause: io.ErrUnexpectedEOF}
		case errors.Is(err, codec.ErrDecode):
			return nil, &DecodeError{Line: 1, cause: err}
		default:
			return nil, fmt.Errorf("read model header: %w", err)
		}
	}

	if !rec.IsHeader() {
		return nil, &DecodeError{Line: 1, cause: errors.New("first record is not a model header")}
	}

	return rec.ModelHeader, nil
}

// Read reconstructs a model from a stream written by Save. The model type is
// taken from the header; only "kernel" is supported.
func Read(r io.Reader, optFns ...Option) (*KernelModel, error) {
	m := New(optFns...)

	lr := codec.NewLineReader(r, m.opts.codec)

	header, err := ReadHeader(lr)
	if err != nil {
		return nil, err
	}

	switch header.ModelType {
	case model.ModelTypeKernel:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModelType, header.ModelType)
	}

	if err := m.Load(header, lr); err != nil {
		return nil, err
	}

	return m, nil
}
