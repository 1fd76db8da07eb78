package kernelscore

import (
	"github.com/hupe1980/kernelscore/codec"
)

type options struct {
	codec            codec.Codec
	logger           *Logger
	metricsCollector MetricsCollector
	batchConcurrency int
}

func defaultOptions() options {
	return options{
		codec:            codec.Default,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		batchConcurrency: 8,
	}
}

// Option configures a KernelModel, Read, or Guarded.
type Option func(*options)

// WithCodec configures the codec used to encode and decode model records.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithLogger configures the logger. Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &kernelscore.BasicMetricsCollector{}
//	m := kernelscore.New(kernelscore.WithMetricsCollector(metrics))
//	// ... use m ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithBatchConcurrency bounds the number of goroutines Guarded.ScoreBatch
// uses. Values below 1 are treated as 1.
func WithBatchConcurrency(n int) Option {
	return func(o *options) {
		o.batchConcurrency = max(1, n)
	}
}
