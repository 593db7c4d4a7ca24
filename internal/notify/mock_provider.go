// Package notify defines the interfaces for announcing completed crawl steps.
package notify

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/JakeFAU/jarchive-crawler/internal/crawler"
)

// MockProvider is a mock implementation of the Provider interface for testing.
type MockProvider struct {
	mock.Mock
}

// Publish is the mock implementation of the Publish method.
func (m *MockProvider) Publish(ctx context.Context, summary crawler.RunSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0) //nolint:wrapcheck
}

// Close is the mock implementation of the Close method.
func (m *MockProvider) Close() error {
	args := m.Called()
	return args.Error(0) //nolint:wrapcheck
}
