// Package feature defines the sparse input consumed by kernel models.
//
// A sparse vector is a set of (family, name, value) triples. The family groups
// related features (for example "loc" or "price"); the name identifies one feature
// within the family.
package feature

import "sort"

// Sparse is a read-only source of (family, name, value) triples.
//
// Implementations must call fn once per stored triple and must not retain fn.
type Sparse interface {
	Each(fn func(family, name string, value float64))
}

// Vector is a map-backed sparse feature vector keyed by family, then name.
//
// The zero value is an empty vector ready to use.
type Vector struct {
	Floats map[string]map[string]float64 `json:"floats,omitempty"`
}

// New returns an empty vector.
func New() *Vector {
	return &Vector{Floats: make(map[string]map[string]float64)}
}

// Set stores value under (family, name), replacing any previous value.
func (v *Vector) Set(family, name string, value float64) *Vector {
	if v.Floats == nil {
		v.Floats = make(map[string]map[string]float64)
	}
	fam, ok := v.Floats[family]
	if !ok {
		fam = make(map[string]float64)
		v.Floats[family] = fam
	}
	fam[name] = value
	return v
}

// Get returns the value stored under (family, name).
func (v *Vector) Get(family, name string) (float64, bool) {
	if v == nil {
		return 0, false
	}
	val, ok := v.Floats[family][name]
	return val, ok
}

// Len returns the number of stored triples.
func (v *Vector) Len() int {
	if v == nil {
		return 0
	}
	n := 0
	for _, fam := range v.Floats {
		n += len(fam)
	}
	return n
}

// Each implements Sparse. Triples are visited in (family, name) order so that
// iteration is reproducible.
func (v *Vector) Each(fn func(family, name string, value float64)) {
	if v == nil {
		return
	}
	families := make([]string, 0, len(v.Floats))
	for family := range v.Floats {
		families = append(families, family)
	}
	sort.Strings(families)

	for _, family := range families {
		fam := v.Floats[family]
		names := make([]string, 0, len(fam))
		for name := range fam {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fn(family, name, fam[name])
		}
	}
}

// Triple is a single (family, name, value) entry.
type Triple struct {
	Family string
	Name   string
	Value  float64
}

// Triples is a slice-backed Sparse. Unlike Vector it may hold the same key more
// than once; consumers see every entry in slice order.
type Triples []Triple

// Each implements Sparse.
func (t Triples) Each(fn func(family, name string, value float64)) {
	for _, tr := range t {
		fn(tr.Family, tr.Name, tr.Value)
	}
}
