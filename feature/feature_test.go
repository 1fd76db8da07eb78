package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector_SetGet(t *testing.T) {
	v := New().Set("loc", "lat", 37.7).Set("loc", "lng", -122.4).Set("price", "nightly", 120)

	val, ok := v.Get("loc", "lat")
	require.True(t, ok)
	assert.Equal(t, 37.7, val)

	_, ok = v.Get("loc", "alt")
	assert.False(t, ok)
	assert.Equal(t, 3, v.Len())

	v.Set("loc", "lat", 1)
	val, _ = v.Get("loc", "lat")
	assert.Equal(t, 1.0, val)
	assert.Equal(t, 3, v.Len())
}

func TestVector_ZeroValue(t *testing.T) {
	var v Vector
	assert.Equal(t, 0, v.Len())
	v.Set("a", "b", 2)
	assert.Equal(t, 1, v.Len())

	var nilVec *Vector
	assert.Equal(t, 0, nilVec.Len())
	nilVec.Each(func(string, string, float64) { t.Fatal("unexpected triple") })
}

func TestVector_EachIsSorted(t *testing.T) {
	v := New().Set("b", "y", 4).Set("a", "z", 2).Set("b", "x", 3).Set("a", "a", 1)

	var got []Triple
	v.Each(func(family, name string, value float64) {
		got = append(got, Triple{family, name, value})
	})

	assert.Equal(t, []Triple{
		{"a", "a", 1},
		{"a", "z", 2},
		{"b", "x", 3},
		{"b", "y", 4},
	}, got)
}

func TestTriples_KeepsDuplicates(t *testing.T) {
	tr := Triples{{"a", "x", 1}, {"a", "x", 2}}
	n := 0
	tr.Each(func(string, string, float64) { n++ })
	assert.Equal(t, 2, n)
}
