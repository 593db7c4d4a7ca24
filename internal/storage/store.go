// Package storage defines the interface for a keyed blob store.
// This abstraction allows the page cache and the export mirror to be
// independent of a specific backend (local filesystem, memory, or
// Google Cloud Storage).
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no blob exists under the key.
var ErrNotFound = errors.New("storage: blob not found")

// Store defines the common interface for a keyed blob store.
type Store interface {
	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores data under key, overwriting any previous blob.
	Put(ctx context.Context, key string, data []byte) error
}

// NoOpStore is a store that persists nothing and never finds anything.
// It is useful for dry runs where pages are fetched but not cached.
type NoOpStore struct{}

// Get for NoOpStore always reports a miss.
func (n *NoOpStore) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, ErrNotFound
}

// Put for NoOpStore does nothing and always returns nil.
func (n *NoOpStore) Put(_ context.Context, _ string, _ []byte) error {
	return nil
}
