package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const tmpSuffix = ".tmp"

// LocalStore implements BlobStore using the local file system.
//
// Blob names may contain '/' and map to subdirectories of root. Writes go to
// a temporary file that is renamed into place on Close.
type LocalStore struct {
	root string
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Open opens a blob for reading.
func (s *LocalStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return &localBlob{File: f, size: st.Size()}, nil
}

// Create creates a new writable blob.
func (s *LocalStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := s.path(name)
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+"-*"+tmpSuffix)
	if err != nil {
		return nil, err
	}

	return &localWritableBlob{f: f, target: target}, nil
}

// Put writes a blob atomically.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	w, err := s.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Abort()
		return err
	}
	return w.Close()
}

// Delete removes a blob.
func (s *LocalStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// List returns all blobs matching the prefix.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == s.root {
				return filepath.SkipDir
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), tmpSuffix) {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(names)
	return names, nil
}

type localBlob struct {
	*os.File
	size int64
}

func (b *localBlob) Size() int64 {
	return b.size
}

type localWritableBlob struct {
	f      *os.File
	target string
	once   sync.Once
	err    error
}

func (w *localWritableBlob) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

// Close syncs the temporary file and renames it into place.
func (w *localWritableBlob) Close() error {
	w.once.Do(func() {
		if err := w.f.Sync(); err != nil {
			w.discard()
			w.err = err
			return
		}
		if err := w.f.Close(); err != nil {
			_ = os.Remove(w.f.Name())
			w.err = err
			return
		}
		if err := os.Rename(w.f.Name(), w.target); err != nil {
			_ = os.Remove(w.f.Name())
			w.err = err
		}
	})
	return w.err
}

func (w *localWritableBlob) Abort() error {
	w.once.Do(w.discard)
	return nil
}

func (w *localWritableBlob) discard() {
	_ = w.f.Close()
	_ = os.Remove(w.f.Name())
}
