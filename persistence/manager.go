package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/kernelscore"
	"github.com/hupe1980/kernelscore/blobstore"
	"github.com/hupe1980/kernelscore/wal"
)

var (
	// ErrManagerClosed is returned when operations are attempted on a closed manager.
	ErrManagerClosed = errors.New("persistence manager is closed")

	// ErrNoWAL is returned when WAL operations are attempted without WAL configured.
	ErrNoWAL = errors.New("WAL not configured")
)

// DefaultSnapshotName is the blob name used when ManagerOptions.Name is empty.
const DefaultSnapshotName = "model.jsonl"

// ManagerOptions configures the persistence manager.
type ManagerOptions struct {
	// Store holds the snapshot blob. Required.
	Store blobstore.BlobStore

	// Name is the snapshot blob name. Defaults to DefaultSnapshotName.
	Name string

	// WAL is an already opened update journal (optional).
	WAL *wal.WAL

	// WALPath opens a journal in that directory when WAL is nil (optional).
	WALPath string

	// WALOptions are additional options for WAL configuration.
	WALOptions []func(*wal.Options)

	// Compression and Level are passed to Save.
	Compression Compression
	Level       int

	// AutoCheckpoint truncates the journal after every successful snapshot.
	AutoCheckpoint bool
}

// Manager coordinates snapshots, the update journal and recovery.
//
// The Manager is thread-safe and can be used concurrently.
type Manager struct {
	store          blobstore.BlobStore
	name           string
	wal            *wal.WAL
	ownsWAL        bool
	compression    Compression
	level          int
	autoCheckpoint bool

	mu     sync.RWMutex
	closed bool
}

// NewManager creates a new persistence manager with the given options.
func NewManager(opts ManagerOptions) (*Manager, error) {
	if opts.Store == nil {
		return nil, errors.New("persistence: store is required")
	}

	pm := &Manager{
		store:          opts.Store,
		name:           opts.Name,
		wal:            opts.WAL,
		compression:    opts.Compression,
		level:          opts.Level,
		autoCheckpoint: opts.AutoCheckpoint,
	}
	if pm.name == "" {
		pm.name = DefaultSnapshotName
	}

	if pm.wal == nil && opts.WALPath != "" {
		walOptFns := append([]func(*wal.Options){
			func(o *wal.Options) {
				o.Path = opts.WALPath
			},
		}, opts.WALOptions...)

		w, err := wal.New(walOptFns...)
		if err != nil {
			return nil, fmt.Errorf("persistence: failed to create WAL: %w", err)
		}
		pm.wal = w
		pm.ownsWAL = true
	}

	return pm, nil
}

// WAL returns the underlying journal, or nil if none is configured.
// Pass it to kernelscore.UpdaterOptions.Journal.
func (pm *Manager) WAL() *wal.WAL {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.wal
}

// Name returns the snapshot blob name.
func (pm *Manager) Name() string {
	return pm.name
}

// Snapshot saves the model held by g and, with AutoCheckpoint, truncates the
// journal.
//
// Both happen under g's write lock, so an update journaled by a
// kernelscore.Updater on g is either in the snapshot or still in the journal.
// Scoring through g waits for the snapshot to finish.
func (pm *Manager) Snapshot(ctx context.Context, g *kernelscore.Guarded) (Info, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if pm.closed {
		return Info{}, ErrManagerClosed
	}

	var info Info
	err := g.Update(func(m *kernelscore.KernelModel) error {
		var err error
		info, err = Save(ctx, pm.store, pm.name, m, func(o *Options) {
			o.Compression = pm.compression
			o.Level = pm.level
		})
		if err != nil {
			return fmt.Errorf("persistence: snapshot failed: %w", err)
		}

		if pm.wal != nil && pm.autoCheckpoint {
			if err := pm.wal.Checkpoint(); err != nil {
				return fmt.Errorf("persistence: WAL checkpoint failed: %w", err)
			}
		}
		return nil
	})

	return info, err
}

// Recover loads the snapshot (an empty model if none exists yet) and replays
// the journal on top of it. It returns the model and the number of replayed
// updates.
func (pm *Manager) Recover(ctx context.Context, modelOpts ...kernelscore.Option) (*kernelscore.KernelModel, int, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if pm.closed {
		return nil, 0, ErrManagerClosed
	}

	m, err := Open(ctx, pm.store, pm.name, WithModelOptions(modelOpts...))
	switch {
	case errors.Is(err, blobstore.ErrNotFound):
		m = kernelscore.New(modelOpts...)
	case err != nil:
		return nil, 0, fmt.Errorf("persistence: snapshot load failed: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	if pm.wal == nil {
		return m, 0, nil
	}

	n, err := kernelscore.Replay(ctx, m, pm.wal)
	if err != nil {
		return nil, n, fmt.Errorf("persistence: WAL replay failed: %w", err)
	}

	return m, n, nil
}

// Checkpoint truncates the journal. Call it only after a snapshot that
// contains every journaled update.
func (pm *Manager) Checkpoint() error {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if pm.closed {
		return ErrManagerClosed
	}
	if pm.wal == nil {
		return ErrNoWAL
	}

	return pm.wal.Checkpoint()
}

// Close shuts down the manager. It closes the journal only if the manager
// opened it.
func (pm *Manager) Close() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.closed {
		return nil
	}
	pm.closed = true

	if pm.wal != nil && pm.ownsWAL {
		return pm.wal.Close()
	}
	return nil
}
