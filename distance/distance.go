package distance

import (
	"sync"

	"gonum.org/v1/gonum/blas/gonum"
)

var engine = gonum.Implementation{}

// scratch holds difference buffers for SquaredL2 so repeated kernel
// evaluations do not allocate.
var scratch = sync.Pool{
	New: func() any {
		s := make([]float32, 256)
		return &s
	},
}

// Dot calculates the dot product of two vectors.
// Only the common prefix min(len(a), len(b)) contributes.
func Dot(a, b []float32) float32 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	return engine.Sdot(n, a, 1, b, 1)
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return engine.Snrm2(len(v), v, 1)
}

// SquaredL2 calculates the squared Euclidean distance between two vectors.
// The shorter vector is treated as zero-padded to the length of the longer one.
func SquaredL2(a, b []float32) float32 {
	if len(a) < len(b) {
		a, b = b, a
	}
	n := len(b)

	var tail float32
	for _, v := range a[n:] {
		tail += v * v
	}
	if n == 0 {
		return tail
	}

	bufPtr := scratch.Get().(*[]float32)
	defer scratch.Put(bufPtr)
	if cap(*bufPtr) < n {
		*bufPtr = make([]float32, n)
	}
	diff := (*bufPtr)[:n]

	copy(diff, a[:n])
	engine.Saxpy(n, -1, b, 1, diff, 1)
	return engine.Sdot(n, diff, 1, diff, 1) + tail
}
