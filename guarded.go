package kernelscore

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/hupe1980/kernelscore/feature"
	"golang.org/x/sync/errgroup"
)

// Guarded wraps a KernelModel with a reader/writer lock.
//
// Scoring and saving share the read lock; online updates and model
// replacement take the write lock, so a score never observes a half-applied
// update.
type Guarded struct {
	mu    sync.RWMutex
	model *KernelModel
	opts  options
}

// NewGuarded returns a Guarded around m. A nil m is replaced by an empty
// model. The options configure batch scoring; the model keeps its own.
func NewGuarded(m *KernelModel, optFns ...Option) *Guarded {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if m == nil {
		m = New()
	}
	return &Guarded{model: m, opts: opts}
}

// ScoreItem scores fv under the read lock.
func (g *Guarded) ScoreItem(fv feature.Sparse) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.model.ScoreItem(fv)
}

// ScoreBatch scores items concurrently against a single model state.
// out[i] is the score of items[i]. Cancelling ctx stops scheduling further
// items and returns ctx's error.
func (g *Guarded) ScoreBatch(ctx context.Context, items []feature.Sparse) (out []float64, err error) {
	start := time.Now()
	defer func() {
		g.opts.metricsCollector.RecordBatchScore(len(items), time.Since(start), err)
	}()

	out = make([]float64, len(items))

	g.mu.RLock()
	defer g.mu.RUnlock()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.batchConcurrency)

	for i, fv := range items {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			out[i] = g.model.ScoreItem(fv)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// The loop may have stopped early without any goroutine observing ctx.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// OnlineUpdate applies one gradient step under the write lock.
func (g *Guarded) OnlineUpdate(grad, learningRate float64, fv feature.Sparse) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.model.OnlineUpdate(grad, learningRate, fv)
}

// Save writes the model under the read lock.
func (g *Guarded) Save(w io.Writer) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.model.Save(w)
}

// Replace swaps in m and returns the previous model.
func (g *Guarded) Replace(m *KernelModel) *KernelModel {
	g.mu.Lock()
	defer g.mu.Unlock()
	prev := g.model
	g.model = m
	return prev
}

// View calls fn with the model under the read lock. fn must not mutate the
// model or retain it.
func (g *Guarded) View(fn func(m *KernelModel)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fn(g.model)
}

// Update calls fn with the model under the write lock.
func (g *Guarded) Update(fn func(m *KernelModel) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.model)
}
