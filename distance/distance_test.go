package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 32},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Mixed", []float32{1, -1, 2}, []float32{1, 1, -2}, -4},
		{"Empty", []float32{}, []float32{}, 0},
		{"Single", []float32{2}, []float32{3}, 6},
		{"ShorterB", []float32{1, 2, 3}, []float32{1, 1}, 3},
		{"Large", make([]float32, 1024), make([]float32, 1024), 0},
	}

	for i := range tests[6].a {
		tests[6].a[i] = 1
		tests[6].b[i] = 1
	}
	tests[6].expected = 1024

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Dot(tt.a, tt.b), 1e-5)
		})
	}
}

func TestSquaredL2(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 27},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"Mixed", []float32{1, -1}, []float32{-1, 1}, 8},
		{"Empty", nil, nil, 0},
		{"PaddedA", []float32{1}, []float32{1, 2}, 4},
		{"PaddedB", []float32{1, 2, 2}, []float32{1}, 8},
		{"Large", make([]float32, 1000), make([]float32, 1000), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SquaredL2(tt.a, tt.b), 1e-5)
		})
	}
}

func TestNorm(t *testing.T) {
	assert.InDelta(t, 5, Norm([]float32{3, 4}), 1e-6)
	assert.Equal(t, float32(0), Norm(nil))
	assert.InDelta(t, math.Sqrt(3), Norm([]float32{1, 1, 1}), 1e-6)
}
