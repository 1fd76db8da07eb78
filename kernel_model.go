package kernelscore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/hupe1980/kernelscore/codec"
	"github.com/hupe1980/kernelscore/dictionary"
	"github.com/hupe1980/kernelscore/feature"
	"github.com/hupe1980/kernelscore/model"
)

// KernelModel scores sparse inputs with a collection of weighted support vectors.
//
// Sparse features are mapped to a dense vector by dictionary lookup; feature
// interactions come from the non-linear kernels rather than from crossed
// features, so dictionaries are expected to stay small (hundreds to a few
// thousand entries).
//
// A KernelModel has no internal locking. ScoreItem may run concurrently with
// itself; OnlineUpdate, Load and the mutators require exclusive access. Use
// Guarded for a ready-made reader/writer discipline.
type KernelModel struct {
	dict           *dictionary.Dictionary
	supportVectors []*SupportVector
	opts           options
}

// DebugScoreRecord describes the contribution of one model component to a
// score. It is reserved for DebugScoreComponents.
type DebugScoreRecord struct {
	FeatureFamily string
	FeatureName   string
	FeatureValue  float64
	FeatureWeight float64
}

// New returns an empty model: an empty dictionary and no support vectors.
func New(optFns ...Option) *KernelModel {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &KernelModel{
		dict: dictionary.New(),
		opts: opts,
	}
}

// Dictionary returns the model's dictionary.
func (m *KernelModel) Dictionary() *dictionary.Dictionary {
	return m.dict
}

// SetDictionary replaces the dictionary. A nil dictionary is replaced by an
// empty one.
func (m *KernelModel) SetDictionary(d *dictionary.Dictionary) *KernelModel {
	if d == nil {
		d = dictionary.New()
	}
	m.dict = d
	return m
}

// SupportVectors returns the support vectors in collection order. The slice
// is a copy; the support vectors themselves are shared with the model.
func (m *KernelModel) SupportVectors() []*SupportVector {
	out := make([]*SupportVector, len(m.supportVectors))
	copy(out, m.supportVectors)
	return out
}

// SetSupportVectors replaces the support vector collection.
func (m *KernelModel) SetSupportVectors(svs []*SupportVector) *KernelModel {
	m.supportVectors = append([]*SupportVector(nil), svs...)
	return m
}

// AddSupportVector appends sv to the collection.
func (m *KernelModel) AddSupportVector(sv *SupportVector) *KernelModel {
	m.supportVectors = append(m.supportVectors, sv)
	return m
}

// ScoreItem returns the sum of every support vector's weighted kernel
// response to the projected input.
//
// Responses are accumulated in a single float32 in collection order, so the
// result is reproducible for a given model and input.
func (m *KernelModel) ScoreItem(fv feature.Sparse) float64 {
	start := time.Now()
	vec := m.dict.Project(fv)

	var sum float32
	for _, sv := range m.supportVectors {
		sum += sv.Evaluate(vec)
	}

	m.opts.metricsCollector.RecordScore(time.Since(start))
	return float64(sum)
}

// DebugScoreItem is reserved for a human-readable score explanation. It
// currently writes nothing to builder and returns 0.
func (m *KernelModel) DebugScoreItem(fv feature.Sparse, builder *strings.Builder) float64 {
	return 0
}

// DebugScoreComponents is reserved for a per-component score breakdown. It
// currently returns an empty, non-nil slice.
func (m *KernelModel) DebugScoreComponents(fv feature.Sparse) []DebugScoreRecord {
	return []DebugScoreRecord{}
}

// OnlineUpdate applies one stochastic gradient step to the weights.
//
// Each support vector's unweighted response to the input plays the role of
// a feature value in a linear model: w += -learningRate * grad * response.
// Kernel parameters are never changed.
func (m *KernelModel) OnlineUpdate(grad, learningRate float64, fv feature.Sparse) {
	start := time.Now()
	vec := m.dict.Project(fv)
	deltaG := -learningRate * grad

	for _, sv := range m.supportVectors {
		response := sv.EvaluateUnweighted(vec)
		deltaW := deltaG * float64(response)
		sv.SetWeight(float32(float64(sv.Weight()) + deltaW))
	}

	m.opts.metricsCollector.RecordUpdate(time.Since(start), nil)
	m.opts.logger.LogUpdate(context.Background(), grad, learningRate, nil)
}

// Header returns the persisted header describing the model.
func (m *KernelModel) Header() model.Header {
	entries := m.dict.Entries()
	dict := make([]model.DictionaryEntry, len(entries))
	for i, e := range entries {
		dict[i] = model.DictionaryEntry{
			Family: e.Family,
			Name:   e.Name,
			Mean:   e.Mean,
			Scale:  e.Scale,
		}
	}
	return model.Header{
		ModelType:  model.ModelTypeKernel,
		Dictionary: dict,
		NumRecords: int64(len(m.supportVectors)),
	}
}

// Save writes the header record followed by one record per support vector,
// one record per line, and flushes.
func (m *KernelModel) Save(w io.Writer) (err error) {
	start := time.Now()
	records := len(m.supportVectors)
	defer func() {
		m.opts.metricsCollector.RecordSave(records, time.Since(start), err)
		m.opts.logger.LogSave(context.Background(), records, err)
	}()

	lw := codec.NewLineWriter(w, m.opts.codec)
	header := m.Header()
	if err := lw.WriteRecord(model.Record{ModelHeader: &header}); err != nil {
		return fmt.Errorf("write model header: %w", err)
	}
	for i, sv := range m.supportVectors {
		if err := lw.WriteRecord(sv.Record()); err != nil {
			return fmt.Errorf("write support vector %d: %w", i, err)
		}
	}
	if err := lw.Flush(); err != nil {
		return fmt.Errorf("flush model: %w", err)
	}
	return nil
}

// Load replaces the dictionary and support vectors with those described by
// header and the header.NumRecords lines that follow it in r.
//
// r must be positioned just after the header line. Loading is all or
// nothing: on error the model keeps its previous state.
func (m *KernelModel) Load(header *model.Header, r *codec.LineReader) (err error) {
	if header == nil {
		return &DecodeError{Line: 1, cause: errors.New("missing model header")}
	}

	start := time.Now()
	var records int
	defer func() {
		m.opts.metricsCollector.RecordLoad(records, time.Since(start), err)
		m.opts.logger.LogLoad(context.Background(), len(header.Dictionary), records, err)
	}()

	if header.ModelType != model.ModelTypeKernel {
		return &ErrModelTypeMismatch{Expected: model.ModelTypeKernel, Actual: header.ModelType}
	}

	// The header occupies at least one line even if the caller consumed it
	// through a different reader.
	base := max(r.Line(), 1)
	if header.NumRecords < 0 || uint64(header.NumRecords) > uint64(math.MaxInt) {
		return &DecodeError{Line: base, cause: fmt.Errorf("invalid record count %d", header.NumRecords)}
	}

	entries := make([]dictionary.Entry, len(header.Dictionary))
	for i, e := range header.Dictionary {
		entries[i] = dictionary.Entry{
			Key:   dictionary.Key{Family: e.Family, Name: e.Name},
			Mean:  e.Mean,
			Scale: e.Scale,
		}
	}
	dict, err := dictionary.FromEntries(entries)
	if err != nil {
		return &DecodeError{Line: base, cause: err}
	}

	// The record count is untrusted until the records are read.
	svs := make([]*SupportVector, 0, min(header.NumRecords, 1024))
	for i := int64(0); i < header.NumRecords; i++ {
		line := base + int(i) + 1

		var rec model.Record
		if err := r.ReadRecord(&rec); err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return &DecodeError{Line: line, cause: io.ErrUnexpectedEOF}
			case errors.Is(err, codec.ErrDecode):
				return &DecodeError{Line: line, cause: err}
			default:
				return fmt.Errorf("read model record at line %d: %w", line, err)
			}
		}
		sv, err := NewSupportVectorFromRecord(rec)
		if err != nil {
			return &DecodeError{Line: line, cause: err}
		}
		svs = append(svs, sv)
	}

	m.dict = dict
	m.supportVectors = svs
	records = len(svs)
	return nil
}

// Equal reports whether m and o have the same dictionary entries and the
// same support vectors in the same order. Floats are compared exactly.
func (m *KernelModel) Equal(o *KernelModel) bool {
	a, b := m.dict.Entries(), o.dict.Entries()
	if len(a) != len(b) || len(m.supportVectors) != len(o.supportVectors) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	for i, sv := range m.supportVectors {
		if !sv.Equal(o.supportVectors[i]) {
			return false
		}
	}
	return true
}
