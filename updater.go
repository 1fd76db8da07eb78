package kernelscore

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/kernelscore/feature"
	"github.com/hupe1980/kernelscore/wal"
	"golang.org/x/time/rate"
)

// Update is one online gradient step.
type Update struct {
	Gradient     float64
	LearningRate float64
	Features     *feature.Vector
}

// UpdaterOptions configures an Updater.
type UpdaterOptions struct {
	// QueueSize is the number of updates that may wait for the worker.
	QueueSize int

	// Journal, if set, records every update before it is applied.
	Journal *wal.WAL

	// Limiter, if set, bounds the rate at which updates are applied.
	Limiter *rate.Limiter

	// Logger receives update failures. Defaults to NoopLogger.
	Logger *Logger
}

type updateRequest struct {
	ctx  context.Context
	upd  Update
	done chan error
}

// Updater serializes online updates through a single goroutine.
//
// Updates are applied in the order they are accepted, optionally journaled
// first and rate limited. Scoring through the same Guarded proceeds
// concurrently between updates.
type Updater struct {
	g       *Guarded
	opts    UpdaterOptions
	queue   chan updateRequest
	closeMu sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
}

// NewUpdater starts the update worker for g.
func NewUpdater(g *Guarded, optFns ...func(o *UpdaterOptions)) *Updater {
	opts := UpdaterOptions{QueueSize: 64}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = NoopLogger()
	}
	opts.QueueSize = max(opts.QueueSize, 0)

	u := &Updater{
		g:     g,
		opts:  opts,
		queue: make(chan updateRequest, opts.QueueSize),
	}

	u.wg.Add(1)
	go u.run()

	return u
}

// Submit enqueues upd and waits until it has been applied. It returns
// ErrClosed after Close, ctx's error if ctx ends first, or the journal error
// that prevented the update from being applied.
func (u *Updater) Submit(ctx context.Context, upd Update) error {
	req := updateRequest{ctx: ctx, upd: upd, done: make(chan error, 1)}

	u.closeMu.RLock()
	if u.closed {
		u.closeMu.RUnlock()
		return ErrClosed
	}
	select {
	case u.queue <- req:
		u.closeMu.RUnlock()
	case <-ctx.Done():
		u.closeMu.RUnlock()
		return ctx.Err()
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting updates, applies those already queued and waits for
// the worker to exit. It does not close the journal.
func (u *Updater) Close() error {
	u.closeMu.Lock()
	if u.closed {
		u.closeMu.Unlock()
		return nil
	}
	u.closed = true
	close(u.queue)
	u.closeMu.Unlock()

	u.wg.Wait()
	return nil
}

func (u *Updater) run() {
	defer u.wg.Done()

	for req := range u.queue {
		req.done <- u.apply(req)
	}
}

func (u *Updater) apply(req updateRequest) error {
	if err := req.ctx.Err(); err != nil {
		return err
	}

	if u.opts.Limiter != nil {
		if err := u.opts.Limiter.Wait(req.ctx); err != nil {
			return err
		}
	}

	// Journal and apply under one write lock so that a snapshot taken under
	// the same lock either contains the update or still has it journaled.
	return u.g.Update(func(m *KernelModel) error {
		if u.opts.Journal != nil {
			if _, err := u.opts.Journal.Append(req.upd.Gradient, req.upd.LearningRate, req.upd.Features); err != nil {
				err = fmt.Errorf("journal update: %w", err)
				u.opts.Logger.LogUpdate(req.ctx, req.upd.Gradient, req.upd.LearningRate, err)
				return err
			}
		}
		m.OnlineUpdate(req.upd.Gradient, req.upd.LearningRate, req.upd.Features)
		return nil
	})
}

// Replay applies every update recorded in j to m in journal order and
// returns the number applied. Use it after loading the last saved model.
func Replay(ctx context.Context, m *KernelModel, j *wal.WAL) (int, error) {
	n := 0
	err := j.Replay(func(e wal.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.OnlineUpdate(e.Gradient, e.LearningRate, e.Features)
		n++
		return nil
	})
	m.opts.logger.LogReplay(ctx, n, err)
	return n, err
}
