// Package dictionary maps feature keys to dense vector indexes.
//
// Indexes are assigned append-only: the first key added gets index 0, the next
// index 1, and so on. Once assigned an index never changes, and a dictionary
// rebuilt from its persisted entry list reproduces the exact assignment.
package dictionary

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kernelscore/feature"
)

// ErrDuplicateKey is returned when an entry list contains the same key twice.
var ErrDuplicateKey = errors.New("dictionary: duplicate key")

// Key identifies a feature by family and name.
type Key struct {
	Family string
	Name   string
}

func (k Key) String() string {
	return k.Family + ":" + k.Name
}

// Entry is one dictionary slot. Projected values are transformed as
// (value - Mean) * Scale before they are accumulated. A zero Scale is read
// as 1, so entries persisted without normalization project unchanged.
type Entry struct {
	Key
	Mean  float64
	Scale float64
}

func (e Entry) transform(value float64) float64 {
	scale := e.Scale
	if scale == 0 {
		scale = 1
	}
	return (value - e.Mean) * scale
}

// Dictionary is an append-only key to index table.
//
// Reads (Project, Index, Size) are safe for concurrent use as long as no
// writer (Add, AddEntry) runs at the same time.
type Dictionary struct {
	entries []Entry
	index   map[Key]int
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{index: make(map[Key]int)}
}

// FromEntries rebuilds a dictionary whose index i is entries[i].
func FromEntries(entries []Entry) (*Dictionary, error) {
	d := &Dictionary{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[Key]int, len(entries)),
	}
	for i, e := range entries {
		if prev, ok := d.index[e.Key]; ok {
			return nil, fmt.Errorf("%w: %s at %d and %d", ErrDuplicateKey, e.Key, prev, i)
		}
		d.index[e.Key] = i
		d.entries = append(d.entries, e)
	}
	return d, nil
}

// Size returns the number of assigned indexes.
func (d *Dictionary) Size() int {
	return len(d.entries)
}

// Index returns the index of (family, name).
func (d *Dictionary) Index(family, name string) (int, bool) {
	i, ok := d.index[Key{Family: family, Name: name}]
	return i, ok
}

// Key returns the key stored at index i.
func (d *Dictionary) Key(i int) (Key, bool) {
	if i < 0 || i >= len(d.entries) {
		return Key{}, false
	}
	return d.entries[i].Key, true
}

// Add assigns the next free index to (family, name) with an identity transform.
// If the key is already present its existing index is returned.
func (d *Dictionary) Add(family, name string) int {
	idx, _ := d.AddEntry(Entry{Key: Key{Family: family, Name: name}, Scale: 1})
	return idx
}

// AddEntry appends e. It returns ErrDuplicateKey together with the existing
// index if the key is already assigned.
func (d *Dictionary) AddEntry(e Entry) (int, error) {
	if i, ok := d.index[e.Key]; ok {
		return i, fmt.Errorf("%w: %s", ErrDuplicateKey, e.Key)
	}
	if d.index == nil {
		d.index = make(map[Key]int)
	}
	i := len(d.entries)
	d.index[e.Key] = i
	d.entries = append(d.entries, e)
	return i, nil
}

// Entries returns a copy of the entries in index order.
func (d *Dictionary) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Project converts a sparse input into a dense vector of length Size().
//
// Each known key accumulates (value - Mean) * Scale into its slot. Unknown
// keys are dropped. The returned slice is freshly allocated.
func (d *Dictionary) Project(fv feature.Sparse) []float32 {
	vec := make([]float32, len(d.entries))
	if fv == nil {
		return vec
	}
	fv.Each(func(family, name string, value float64) {
		i, ok := d.index[Key{Family: family, Name: name}]
		if !ok {
			return
		}
		vec[i] += float32(d.entries[i].transform(value))
	})
	return vec
}
