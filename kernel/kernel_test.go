package kernel

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	x := []float32{1, 2}
	tests := []struct {
		name     string
		kind     Kind
		params   Params
		expected float64
		delta    float64
	}{
		{"Linear", Linear, Params{Point: []float32{3, 4}}, 11, 1e-6},
		{"LinearShortPoint", Linear, Params{Point: []float32{3}}, 3, 1e-6},
		{"Polynomial", Polynomial, Params{Point: []float32{1, 1}, Scale: 0.5, Coef0: 1, Degree: 2}, 6.25, 1e-6},
		{"PolynomialDegreeZero", Polynomial, Params{Point: []float32{1, 1}, Scale: 1, Degree: 0}, 1, 0},
		{"RBFSamePoint", RBF, Params{Point: []float32{1, 2}, Scale: 3}, 1, 0},
		{"RBF", RBF, Params{Point: []float32{0, 0}, Scale: 0.1}, math.Exp(-0.5), 1e-6},
		// float32 norms leave acos slightly off its endpoints.
		{"ArcCosineParallel", ArcCosine, Params{Point: []float32{2, 4}}, 1, 1e-3},
		{"ArcCosineOpposite", ArcCosine, Params{Point: []float32{-1, -2}}, 0, 1e-3},
		{"ArcCosineOrthogonal", ArcCosine, Params{Point: []float32{-2, 1}}, 0.5, 1e-6},
		{"ArcCosineZeroPoint", ArcCosine, Params{Point: []float32{0, 0}}, 0, 0},
		{"Sigmoid", Sigmoid, Params{Point: []float32{1, 0}, Scale: 1, Coef0: -1}, 0, 1e-6},
		{"Unknown", Kind(99), Params{Point: []float32{1, 0}}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Evaluate(tt.kind, tt.params, x), tt.delta)
		})
	}
}

func TestEvaluate_ZeroInput(t *testing.T) {
	zero := []float32{0, 0}
	assert.Equal(t, float32(0), Evaluate(Linear, Params{Point: []float32{1, 2}}, zero))
	assert.InDelta(t, math.Exp(-5), Evaluate(RBF, Params{Point: []float32{1, 2}, Scale: 1}, zero), 1e-6)
	assert.Equal(t, float32(0), Evaluate(ArcCosine, Params{Point: []float32{1, 2}}, zero))
}

func TestKind_Text(t *testing.T) {
	for _, k := range []Kind{Linear, Polynomial, RBF, ArcCosine, Sigmoid} {
		b, err := k.MarshalText()
		require.NoError(t, err)

		var got Kind
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, k, got)
	}

	_, err := Kind(42).MarshalText()
	require.Error(t, err)
	assert.Equal(t, "Unknown(42)", Kind(42).String())
}

func TestParseKind_Aliases(t *testing.T) {
	k, err := ParseKind("radial_basis_function")
	require.NoError(t, err)
	assert.Equal(t, RBF, k)

	_, err = ParseKind("laplacian")
	require.Error(t, err)
}

func TestKind_JSON(t *testing.T) {
	type wrapper struct {
		Kind Kind `json:"kind"`
	}
	b, err := json.Marshal(wrapper{Kind: ArcCosine})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"arccos"}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"sigmoid"}`), &w))
	assert.Equal(t, Sigmoid, w.Kind)
}

func TestParams_CloneAndEqual(t *testing.T) {
	p := Params{Point: []float32{1, 2}, Scale: 0.5, Coef0: 1, Degree: 3}
	c := p.Clone()
	assert.True(t, p.Equal(c))

	c.Point[0] = 9
	assert.False(t, p.Equal(c))
	assert.Equal(t, float32(1), p.Point[0])
}
