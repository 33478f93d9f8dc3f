package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/alnah/go-umt/internal/fileutil"
)

// FSStore writes blobs as files in a directory, created on first use.
// An existing file with the same name is replaced.
type FSStore struct {
	dir string

	once    sync.Once
	initErr error
}

// NewFSStore creates a store rooted at dir.
func NewFSStore(dir string) *FSStore {
	return &FSStore{dir: dir}
}

// Dir returns the storage directory.
func (s *FSStore) Dir() string {
	return s.dir
}

// Store writes data to dir/filename and returns that path.
func (s *FSStore) Store(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := fileutil.ValidateFilename(filename); err != nil {
		return "", fmt.Errorf("storing %q: %w", filename, err)
	}

	s.once.Do(func() {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			s.initErr = fmt.Errorf("creating blob directory: %w", err)
		}
	})
	if s.initErr != nil {
		return "", s.initErr
	}

	path := filepath.Join(s.dir, filename)
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storing %q: %w", filename, err)
	}
	return path, nil
}

// Load reads a previously stored blob.
func (s *FSStore) Load(_ context.Context, filename string) ([]byte, error) {
	if err := fileutil.ValidateFilename(filename); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	return data, err
}
