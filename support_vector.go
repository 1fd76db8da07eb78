package kernelscore

import (
	"fmt"

	"github.com/hupe1980/kernelscore/kernel"
	"github.com/hupe1980/kernelscore/model"
)

// SupportVector is a weighted kernel unit.
//
// The kernel kind and parameters are fixed at construction; only the weight
// changes during the model's lifetime.
type SupportVector struct {
	kind   kernel.Kind
	params kernel.Params
	weight float32
}

// NewSupportVector returns a support vector with a copy of params.
// A polynomial kernel needs a non-negative degree.
func NewSupportVector(kind kernel.Kind, params kernel.Params, weight float32) (*SupportVector, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKernel, kind)
	}
	if kind == kernel.Polynomial && params.Degree < 0 {
		return nil, fmt.Errorf("%w: polynomial degree %d is negative", ErrInvalidKernel, params.Degree)
	}
	return &SupportVector{kind: kind, params: params.Clone(), weight: weight}, nil
}

// NewSupportVectorFromRecord decodes a persisted support vector record.
func NewSupportVectorFromRecord(rec model.Record) (*SupportVector, error) {
	if rec.IsHeader() {
		return nil, fmt.Errorf("%w: unexpected header record", ErrInvalidKernel)
	}
	kind, err := kernel.ParseKind(rec.FunctionForm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKernel, err)
	}
	return NewSupportVector(kind, kernel.Params{
		Point:  rec.WeightVector,
		Scale:  rec.Scale,
		Coef0:  rec.Coef0,
		Degree: rec.Degree,
	}, rec.FeatureWeight)
}

// Kind returns the kernel kind.
func (sv *SupportVector) Kind() kernel.Kind { return sv.kind }

// Params returns a copy of the kernel parameters.
func (sv *SupportVector) Params() kernel.Params { return sv.params.Clone() }

// Weight returns the current weight.
func (sv *SupportVector) Weight() float32 { return sv.weight }

// SetWeight replaces the weight. Non-finite values are accepted as is.
func (sv *SupportVector) SetWeight(w float32) { sv.weight = w }

// EvaluateUnweighted returns the kernel response to x, ignoring the weight.
func (sv *SupportVector) EvaluateUnweighted(x []float32) float32 {
	return kernel.Evaluate(sv.kind, sv.params, x)
}

// Evaluate returns weight * EvaluateUnweighted(x).
func (sv *SupportVector) Evaluate(x []float32) float32 {
	return sv.weight * sv.EvaluateUnweighted(x)
}

// Record returns the persisted form of the support vector.
func (sv *SupportVector) Record() model.Record {
	p := sv.params.Clone()
	return model.Record{
		FunctionForm:  sv.kind.String(),
		WeightVector:  p.Point,
		Scale:         p.Scale,
		Coef0:         p.Coef0,
		Degree:        p.Degree,
		FeatureWeight: sv.weight,
	}
}

// Equal reports whether sv and o have the same kind, parameters and weight.
// Floats are compared exactly.
func (sv *SupportVector) Equal(o *SupportVector) bool {
	return sv.kind == o.kind && sv.weight == o.weight && sv.params.Equal(o.params)
}
