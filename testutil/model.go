package testutil

import (
	"github.com/hupe1980/kernelscore"
	"github.com/hupe1980/kernelscore/dictionary"
	"github.com/hupe1980/kernelscore/feature"
	"github.com/hupe1980/kernelscore/kernel"
)

// ModelConfig shapes a random model.
type ModelConfig struct {
	Families       int
	NamesPerFamily int
	SupportVectors int

	// Kinds restricts the kernel kinds drawn. Empty means all kinds.
	Kinds []kernel.Kind

	// Normalize gives dictionary entries a random mean and scale.
	Normalize bool
}

var allKinds = []kernel.Kind{kernel.Linear, kernel.Polynomial, kernel.RBF, kernel.ArcCosine, kernel.Sigmoid}

// Dictionary returns a dictionary with families*namesPerFamily entries named
// "fam<i>"/"f<j>".
func (r *RNG) Dictionary(families, namesPerFamily int, normalize bool) *dictionary.Dictionary {
	d := dictionary.New()
	for _, family := range Names("fam", families) {
		for _, name := range Names("f", namesPerFamily) {
			e := dictionary.Entry{Key: dictionary.Key{Family: family, Name: name}}
			if normalize {
				e.Mean = r.Float64Range(-1, 1)
				e.Scale = r.Float64Range(0.5, 2)
			}
			if _, err := d.AddEntry(e); err != nil {
				panic(err)
			}
		}
	}
	return d
}

// Params returns random kernel parameters with a point of dim values in
// [-1, 1). Polynomial degrees are in [1, 3].
func (r *RNG) Params(kind kernel.Kind, dim int) kernel.Params {
	p := kernel.Params{Point: make([]float32, dim)}
	r.FillUniformRange(p.Point, -1, 1)

	switch kind {
	case kernel.Polynomial:
		p.Scale = 0.1 + r.Float32()
		p.Coef0 = r.Float32()
		p.Degree = 1 + r.Intn(3)
	case kernel.RBF:
		p.Scale = 0.1 + r.Float32()
	case kernel.Sigmoid:
		p.Scale = 0.1 + r.Float32()
		p.Coef0 = r.Float32() - 0.5
	}
	return p
}

// Model returns a random model shaped by cfg.
func (r *RNG) Model(cfg ModelConfig, optFns ...kernelscore.Option) *kernelscore.KernelModel {
	kinds := cfg.Kinds
	if len(kinds) == 0 {
		kinds = allKinds
	}

	dict := r.Dictionary(cfg.Families, cfg.NamesPerFamily, cfg.Normalize)
	m := kernelscore.New(optFns...).SetDictionary(dict)

	for range cfg.SupportVectors {
		kind := kinds[r.Intn(len(kinds))]
		sv, err := kernelscore.NewSupportVector(kind, r.Params(kind, dict.Size()), r.Float32()*2-1)
		if err != nil {
			panic(err)
		}
		m.AddSupportVector(sv)
	}
	return m
}

// Features returns a sparse vector that sets each dictionary key with
// probability density, plus one key the dictionary does not know.
func (r *RNG) Features(d *dictionary.Dictionary, density float64) *feature.Vector {
	fv := feature.New()
	for _, e := range d.Entries() {
		if r.Float64Range(0, 1) < density {
			fv.Set(e.Family, e.Name, r.Float64Range(-2, 2))
		}
	}
	fv.Set("unknown", "x", r.Float64Range(-2, 2))
	return fv
}

// FeatureBatch returns n random sparse vectors.
func (r *RNG) FeatureBatch(d *dictionary.Dictionary, n int, density float64) []feature.Sparse {
	out := make([]feature.Sparse, n)
	for i := range out {
		out[i] = r.Features(d, density)
	}
	return out
}
