// Package storage defines the interface for a keyed blob store.
package storage

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of the Store interface for testing.
type MockStore struct {
	mock.Mock
}

// Get is the mock implementation of the Get method.
func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck
	}
	return args.Get(0).([]byte), args.Error(1) //nolint:wrapcheck
}

// Put is the mock implementation of the Put method.
func (m *MockStore) Put(ctx context.Context, key string, data []byte) error {
	args := m.Called(ctx, key, data)
	return args.Error(0) //nolint:wrapcheck
}
