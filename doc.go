// Package kernelscore provides kernel-model scoring for sparse feature inputs.
//
// A KernelModel maps (family, name, value) features to a dense vector through
// an append-only dictionary and scores that vector as the sum of weighted
// kernel responses of its support vectors. Weights can be adjusted online, one
// stochastic gradient step at a time, and the whole model round-trips through
// a line-oriented record stream.
//
// # Quick Start
//
//	dict := dictionary.New()
//	dict.Add("loc", "lat")
//	dict.Add("loc", "lng")
//
//	sv, _ := kernelscore.NewSupportVector(kernel.RBF, kernel.Params{
//		Point: []float32{37.7, -122.4},
//		Scale: 0.5,
//	}, 1.0)
//
//	m := kernelscore.New().SetDictionary(dict).AddSupportVector(sv)
//
//	fv := feature.New().Set("loc", "lat", 37.8).Set("loc", "lng", -122.3)
//	score := m.ScoreItem(fv)
//
// # Kernels
//
// Five kernels are available (see package kernel):
//
//	linear      K(p, x) = <p, x>
//	polynomial  K(p, x) = (scale*<p, x> + coef0)^degree
//	rbf         K(p, x) = exp(-scale * ||p - x||^2)
//	arccos      K(p, x) = 1 - acos(<p, x> / (||p|| ||x||)) / pi
//	sigmoid     K(p, x) = tanh(scale*<p, x> + coef0)
//
// # Online Updates
//
// OnlineUpdate treats each support vector's unweighted response as the
// feature of a linear model and moves every weight by
// -learningRate * gradient * response. Kernel parameters never change.
//
// # Persistence
//
// Save writes one header record (model type, dictionary, record count)
// followed by one record per support vector, one JSON object per line:
//
//	{"model_header":{"model_type":"kernel","dictionary":[...],"num_records":2}}
//	{"function_form":"rbf","weight_vector":[37.7,-122.4],"scale":0.5,"feature_weight":1}
//
// Read reconstructs a model from such a stream. Package persistence stores
// the same stream, optionally compressed, in a blobstore.
//
// # Concurrency
//
// KernelModel itself is not synchronized. Guarded adds a reader/writer lock
// and concurrent batch scoring; Updater serializes online updates through a
// single goroutine and can journal them to a wal.WAL for crash recovery.
//
// # Observability
//
//	metrics := &kernelscore.BasicMetricsCollector{}
//	m := kernelscore.New(
//		kernelscore.WithLogger(kernelscore.NewJSONLogger(slog.LevelInfo)),
//		kernelscore.WithMetricsCollector(metrics),
//	)
//
// Package metrics/prom exports the same events to Prometheus.
package kernelscore
