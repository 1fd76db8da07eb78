// Package codec encodes the records of a saved model.
//
// A codec turns one record into one self-contained byte string; LineWriter and
// LineReader frame those strings as newline-terminated lines. Changing the
// codec of an existing file is a breaking change: both built-in codecs emit
// JSON, so files written by one can be read by the other.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use and must not emit newlines.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
//
// This is used by configuration surfaces (CLI flags, YAML) that select a codec
// by string.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json", "":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for internal tests/benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
