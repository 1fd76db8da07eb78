package kernelscore

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedModelType is returned by Read when the header names a
	// model type other than "kernel".
	ErrUnsupportedModelType = errors.New("unsupported model type")

	// ErrCorruptRecord is matched (via errors.Is) by every DecodeError.
	ErrCorruptRecord = errors.New("corrupt model record")

	// ErrInvalidKernel is returned when a support vector names an unknown kernel.
	ErrInvalidKernel = errors.New("invalid kernel")

	// ErrClosed is returned by an Updater after Close.
	ErrClosed = errors.New("updater closed")
)

// DecodeError reports a persisted line that could not be turned into a
// header or support vector.
//
// Line is 1-based and counts the header, so the first support vector of a
// file is line 2. The underlying error (if any) can be accessed via
// errors.Unwrap; a file that ends before the declared record count yields
// io.ErrUnexpectedEOF.
type DecodeError struct {
	Line  int
	cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode model record at line %d: %v", e.Line, e.cause)
}

func (e *DecodeError) Unwrap() error { return e.cause }

// Is makes every DecodeError match ErrCorruptRecord.
func (e *DecodeError) Is(target error) bool { return target == ErrCorruptRecord }

// ErrModelTypeMismatch indicates a header whose model type does not match
// the model it is loaded into.
type ErrModelTypeMismatch struct {
	Expected string
	Actual   string
}

func (e *ErrModelTypeMismatch) Error() string {
	return fmt.Sprintf("model type mismatch: expected %q, got %q", e.Expected, e.Actual)
}

func (e *ErrModelTypeMismatch) Unwrap() error { return ErrUnsupportedModelType }
