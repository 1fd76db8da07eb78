// Package distance provides the float32 vector primitives used by kernel evaluation.
//
// Inner products and norms are delegated to gonum's pure Go BLAS implementation,
// which unrolls and vectorizes the hot loops.
//
// # Usage
//
//	dot := distance.Dot(a, b)
//	d2 := distance.SquaredL2(a, b)
//	n := distance.Norm(a)
package distance
