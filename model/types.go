package model

// ModelTypeKernel is the header model type of a kernel model.
const ModelTypeKernel = "kernel"

// Header describes a saved model.
type Header struct {
	ModelType  string            `json:"model_type"`
	Dictionary []DictionaryEntry `json:"dictionary"`
	NumRecords int64             `json:"num_records"`
}

// DictionaryEntry is one dictionary slot. Its position in Header.Dictionary
// is its dense vector index.
type DictionaryEntry struct {
	Family string  `json:"family"`
	Name   string  `json:"name"`
	Mean   float64 `json:"mean,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

// Record is one line of a saved model: either the header (ModelHeader set)
// or one support vector.
type Record struct {
	ModelHeader *Header `json:"model_header,omitempty"`

	FunctionForm  string    `json:"function_form,omitempty"`
	WeightVector  []float32 `json:"weight_vector,omitempty"`
	Scale         float32   `json:"scale,omitempty"`
	Coef0         float32   `json:"coef0,omitempty"`
	Degree        int       `json:"degree,omitempty"`
	FeatureWeight float32   `json:"feature_weight,omitempty"`
}

// IsHeader reports whether r carries a model header.
func (r *Record) IsHeader() bool {
	return r.ModelHeader != nil
}
