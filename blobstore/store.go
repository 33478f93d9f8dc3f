// Package blobstore persists binary payloads, such as downloaded images, and
// reports where they ended up. The returned location is opaque to callers:
// a file path for FSStore, a sqlite: URI for SQLiteStore.
package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load for an unknown filename.
var ErrNotFound = errors.New("blob not found")

// Store persists data under filename and returns its location.
type Store interface {
	Store(ctx context.Context, filename string, data []byte) (string, error)
}

// Func adapts a function to Store.
type Func func(ctx context.Context, filename string, data []byte) (string, error)

// Store calls f.
func (f Func) Store(ctx context.Context, filename string, data []byte) (string, error) {
	return f(ctx, filename, data)
}

// Compile-time interface checks
var (
	_ Store = Func(nil)
	_ Store = (*FSStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
