package kernelscore

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics/prom package provides a Prometheus implementation.
//
// Collectors are called on the scoring hot path and must be safe for
// concurrent use.
type MetricsCollector interface {
	// RecordScore is called after each scored item.
	RecordScore(duration time.Duration)

	// RecordBatchScore is called after each batch scoring call.
	// count is the number of items in the batch.
	RecordBatchScore(count int, duration time.Duration, err error)

	// RecordUpdate is called after each online update.
	RecordUpdate(duration time.Duration, err error)

	// RecordSave is called after each save. records counts the support vectors.
	RecordSave(records int, duration time.Duration, err error)

	// RecordLoad is called after each load. records counts the support vectors.
	RecordLoad(records int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordScore(time.Duration)                  {}
func (NoopMetricsCollector) RecordBatchScore(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordUpdate(time.Duration, error)          {}
func (NoopMetricsCollector) RecordSave(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ScoreCount       atomic.Int64
	ScoreTotalNanos  atomic.Int64
	BatchScoreCount  atomic.Int64
	BatchScoreItems  atomic.Int64
	BatchScoreErrors atomic.Int64
	UpdateCount      atomic.Int64
	UpdateErrors     atomic.Int64
	UpdateTotalNanos atomic.Int64
	SaveCount        atomic.Int64
	SaveErrors       atomic.Int64
	LoadCount        atomic.Int64
	LoadErrors       atomic.Int64
	LoadedRecords    atomic.Int64
}

// RecordScore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScore(duration time.Duration) {
	b.ScoreCount.Add(1)
	b.ScoreTotalNanos.Add(duration.Nanoseconds())
}

// RecordBatchScore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchScore(count int, duration time.Duration, err error) {
	b.BatchScoreCount.Add(1)
	b.BatchScoreItems.Add(int64(count))
	if err != nil {
		b.BatchScoreErrors.Add(1)
	}
}

// RecordUpdate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpdate(duration time.Duration, err error) {
	b.UpdateCount.Add(1)
	b.UpdateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.UpdateErrors.Add(1)
	}
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(records int, duration time.Duration, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(records int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadedRecords.Add(int64(records))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ScoreCount:       b.ScoreCount.Load(),
		ScoreAvgNanos:    avgNanos(b.ScoreTotalNanos.Load(), b.ScoreCount.Load()),
		BatchScoreCount:  b.BatchScoreCount.Load(),
		BatchScoreItems:  b.BatchScoreItems.Load(),
		BatchScoreErrors: b.BatchScoreErrors.Load(),
		UpdateCount:      b.UpdateCount.Load(),
		UpdateErrors:     b.UpdateErrors.Load(),
		UpdateAvgNanos:   avgNanos(b.UpdateTotalNanos.Load(), b.UpdateCount.Load()),
		SaveCount:        b.SaveCount.Load(),
		SaveErrors:       b.SaveErrors.Load(),
		LoadCount:        b.LoadCount.Load(),
		LoadErrors:       b.LoadErrors.Load(),
		LoadedRecords:    b.LoadedRecords.Load(),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ScoreCount       int64
	ScoreAvgNanos    int64
	BatchScoreCount  int64
	BatchScoreItems  int64
	BatchScoreErrors int64
	UpdateCount      int64
	UpdateErrors     int64
	UpdateAvgNanos   int64
	SaveCount        int64
	SaveErrors       int64
	LoadCount        int64
	LoadErrors       int64
	LoadedRecords    int64
}
