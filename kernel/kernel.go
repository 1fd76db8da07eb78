// Package kernel defines the kernel functions a support vector can carry.
//
// A kernel is selected by Kind, a closed tagged variant, and parameterized by
// Params. Evaluate is a pure function of the kind, the parameters and the input.
//
// # Supported Kinds
//
//   - Linear:     <p, x>
//   - Polynomial: (scale * <p, x> + coef0) ^ degree
//   - RBF:        exp(-scale * ||p - x||^2)
//   - ArcCosine:  1 - acos(cos(p, x)) / pi
//   - Sigmoid:    tanh(scale * <p, x> + coef0)
package kernel

import (
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/kernelscore/distance"
)

// Kind selects a kernel function.
type Kind int

const (
	Linear Kind = iota
	Polynomial
	RBF
	ArcCosine
	Sigmoid
)

var kindNames = [...]string{
	Linear:     "linear",
	Polynomial: "polynomial",
	RBF:        "rbf",
	ArcCosine:  "arccos",
	Sigmoid:    "sigmoid",
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < len(kindNames)
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind returns the kind with the given persisted name.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	switch name {
	case "gaussian", "radial_basis_function":
		return RBF, nil
	case "poly":
		return Polynomial, nil
	case "arc_cosine":
		return ArcCosine, nil
	}
	return 0, fmt.Errorf("kernel: unknown kind %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("kernel: cannot marshal %s", k)
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Params holds the reference point and scalar parameters of a kernel.
//
// Scale is the RBF bandwidth and the polynomial/sigmoid gamma. Coef0 and
// Degree are used by the polynomial and sigmoid kernels only.
type Params struct {
	Point  []float32
	Scale  float32
	Coef0  float32
	Degree int
}

// Clone returns a deep copy of p.
func (p Params) Clone() Params {
	p.Point = slices.Clone(p.Point)
	return p
}

// Equal reports whether p and o are identical, comparing floats exactly.
func (p Params) Equal(o Params) bool {
	return p.Scale == o.Scale && p.Coef0 == o.Coef0 && p.Degree == o.Degree && slices.Equal(p.Point, o.Point)
}

// Evaluate computes the kernel response between p and x.
//
// If x and the point differ in length, missing trailing slots read as zero.
// Unknown kinds evaluate to 0.
func Evaluate(kind Kind, p Params, x []float32) float32 {
	switch kind {
	case Linear:
		return distance.Dot(p.Point, x)
	case Polynomial:
		base := float64(p.Scale)*float64(distance.Dot(p.Point, x)) + float64(p.Coef0)
		return float32(powi(base, p.Degree))
	case RBF:
		d2 := distance.SquaredL2(p.Point, x)
		return float32(math.Exp(-float64(p.Scale) * float64(d2)))
	case ArcCosine:
		return arcCosine(p.Point, x)
	case Sigmoid:
		return float32(math.Tanh(float64(p.Scale)*float64(distance.Dot(p.Point, x)) + float64(p.Coef0)))
	default:
		return 0
	}
}

func arcCosine(a, b []float32) float32 {
	na := distance.Norm(a)
	nb := distance.Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	cos := float64(distance.Dot(a, b)) / (float64(na) * float64(nb))
	cos = max(-1, min(1, cos))
	return float32(1 - math.Acos(cos)/math.Pi)
}

// powi raises base to a non-negative integer power by squaring.
func powi(base float64, times int) float64 {
	ret := 1.0
	for t := times; t > 0; t /= 2 {
		if t%2 == 1 {
			ret *= base
		}
		base *= base
	}
	return ret
}
