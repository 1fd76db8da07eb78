package dictionary

import (
	"testing"

	"github.com/hupe1980/kernelscore/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionary_AddIsAppendOnly(t *testing.T) {
	d := New()
	assert.Equal(t, 0, d.Add("f", "a"))
	assert.Equal(t, 1, d.Add("f", "b"))
	assert.Equal(t, 0, d.Add("f", "a"))
	assert.Equal(t, 2, d.Size())

	k, ok := d.Key(1)
	require.True(t, ok)
	assert.Equal(t, Key{Family: "f", Name: "b"}, k)

	_, ok = d.Key(2)
	assert.False(t, ok)
}

func TestDictionary_AddEntryDuplicate(t *testing.T) {
	d := New()
	_, err := d.AddEntry(Entry{Key: Key{"f", "a"}, Scale: 1})
	require.NoError(t, err)

	idx, err := d.AddEntry(Entry{Key: Key{"f", "a"}, Scale: 2})
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, d.Size())
}

func TestFromEntries(t *testing.T) {
	entries := []Entry{
		{Key: Key{"f", "b"}, Scale: 1},
		{Key: Key{"f", "a"}, Mean: 2, Scale: 0.5},
	}
	d, err := FromEntries(entries)
	require.NoError(t, err)

	i, ok := d.Index("f", "b")
	require.True(t, ok)
	assert.Equal(t, 0, i)
	assert.Equal(t, entries, d.Entries())

	_, err = FromEntries([]Entry{{Key: Key{"f", "a"}}, {Key: Key{"f", "a"}}})
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestDictionary_EntriesIsCopy(t *testing.T) {
	d := New()
	d.Add("f", "a")
	e := d.Entries()
	e[0].Scale = 42
	assert.Equal(t, 1.0, d.Entries()[0].Scale)
}

func TestDictionary_Project(t *testing.T) {
	d := New()
	d.Add("", "a")
	d.Add("", "b")

	t.Run("Known", func(t *testing.T) {
		vec := d.Project(feature.New().Set("", "a", 1))
		assert.Equal(t, []float32{1, 0}, vec)
	})

	t.Run("UnknownDropped", func(t *testing.T) {
		vec := d.Project(feature.New().Set("", "zzz", 7).Set("other", "a", 3))
		assert.Equal(t, []float32{0, 0}, vec)
	})

	t.Run("Nil", func(t *testing.T) {
		assert.Equal(t, []float32{0, 0}, d.Project(nil))
	})

	t.Run("DuplicatesAccumulate", func(t *testing.T) {
		vec := d.Project(feature.Triples{{Family: "", Name: "b", Value: 1.5}, {Family: "", Name: "b", Value: 2}})
		assert.Equal(t, []float32{0, 3.5}, vec)
	})

	t.Run("Deterministic", func(t *testing.T) {
		fv := feature.New().Set("", "a", 0.25).Set("", "b", -4)
		assert.Equal(t, d.Project(fv), d.Project(fv))
	})
}

func TestDictionary_ProjectNormalizes(t *testing.T) {
	d, err := FromEntries([]Entry{{Key: Key{"price", "nightly"}, Mean: 100, Scale: 0.01}})
	require.NoError(t, err)

	vec := d.Project(feature.New().Set("price", "nightly", 150))
	assert.InDelta(t, 0.5, vec[0], 1e-6)
}

func TestDictionary_ZeroScaleIsIdentity(t *testing.T) {
	d, err := FromEntries([]Entry{{Key: Key{"", "a"}}})
	require.NoError(t, err)
	assert.Equal(t, []float32{3}, d.Project(feature.New().Set("", "a", 3)))
}
