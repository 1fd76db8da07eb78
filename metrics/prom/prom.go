// Package prom reports kernelscore metrics to Prometheus.
//
//	c := prom.New("kernelscore")
//	prometheus.MustRegister(c)
//	m := kernelscore.New(kernelscore.WithMetricsCollector(c))
package prom

import (
	"time"

	"github.com/hupe1980/kernelscore"
	"github.com/prometheus/client_golang/prometheus"
)

var _ kernelscore.MetricsCollector = (*Collector)(nil)
var _ prometheus.Collector = (*Collector)(nil)

// Collector implements kernelscore.MetricsCollector and prometheus.Collector.
type Collector struct {
	opLatency  *prometheus.HistogramVec
	ops        *prometheus.CounterVec
	batchItems prometheus.Counter
	records    *prometheus.CounterVec
}

// New returns a collector whose metric names start with namespace.
func New(namespace string) *Collector {
	return &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of model operations.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"op"}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Model operations by outcome.",
		}, []string{"op", "status"}),
		batchItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Items scored through batch calls.",
		}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Support vector records saved or loaded.",
		}, []string{"op"}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.opLatency.Describe(ch)
	c.ops.Describe(ch)
	c.batchItems.Describe(ch)
	c.records.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.opLatency.Collect(ch)
	c.ops.Collect(ch)
	c.batchItems.Collect(ch)
	c.records.Collect(ch)
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	c.opLatency.WithLabelValues(op).Observe(d.Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.ops.WithLabelValues(op, status).Inc()
}

// RecordScore implements kernelscore.MetricsCollector.
func (c *Collector) RecordScore(d time.Duration) {
	c.observe("score", d, nil)
}

// RecordBatchScore implements kernelscore.MetricsCollector.
func (c *Collector) RecordBatchScore(count int, d time.Duration, err error) {
	c.observe("score_batch", d, err)
	c.batchItems.Add(float64(count))
}

// RecordUpdate implements kernelscore.MetricsCollector.
func (c *Collector) RecordUpdate(d time.Duration, err error) {
	c.observe("update", d, err)
}

// RecordSave implements kernelscore.MetricsCollector.
func (c *Collector) RecordSave(records int, d time.Duration, err error) {
	c.observe("save", d, err)
	if err == nil {
		c.records.WithLabelValues("save").Add(float64(records))
	}
}

// RecordLoad implements kernelscore.MetricsCollector.
func (c *Collector) RecordLoad(records int, d time.Duration, err error) {
	c.observe("load", d, err)
	if err == nil {
		c.records.WithLabelValues("load").Add(float64(records))
	}
}
