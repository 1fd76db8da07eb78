package wal

import (
	"bytes"
	"testing"

	"github.com/hupe1980/kernelscore/codec"
)

// FuzzDecodeEntry ensures arbitrary bytes never panic the entry decoder.
func FuzzDecodeEntry(f *testing.F) {
	w := &WAL{codec: codec.Default}

	var seed bytes.Buffer
	enc := &WAL{codec: codec.Default, writer: &seed}
	_ = enc.encodeEntry(&Entry{SeqNum: 1, Gradient: 0.5, LearningRate: 0.1})

	f.Add(seed.Bytes())
	f.Add([]byte{})
	f.Add(bytes.Repeat([]byte{0xff}, 40))

	f.Fuzz(func(t *testing.T, data []byte) {
		r := bytes.NewReader(data)
		for {
			var e Entry
			if err := w.decodeEntry(r, &e); err != nil {
				return
			}
		}
	})
}
