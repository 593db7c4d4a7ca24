// Package notify defines the interfaces for announcing completed crawl steps.
// This abstraction allows the application to be independent of a specific
// messaging implementation (e.g., GCP Pub/Sub, RabbitMQ, Kafka).
package notify

import (
	"context"

	"github.com/JakeFAU/jarchive-crawler/internal/crawler"
)

// Provider defines the common interface for a run notifier.
// It abstracts the operations of publishing run summaries and closing the
// connection.
type Provider interface {
	// Publish announces the outcome of one crawl step to the configured
	// destination.
	Publish(ctx context.Context, summary crawler.RunSummary) error

	// Close cleans up any client connections and resources.
	Close() error
}

// NoOpProvider is a notifier that performs no operations.
// It is the default for local runs where no downstream consumer exists.
type NoOpProvider struct{}

// Publish for NoOpProvider does nothing and returns nil.
func (n *NoOpProvider) Publish(_ context.Context, _ crawler.RunSummary) error { return nil }

// Close for NoOpProvider does nothing and returns nil.
func (n *NoOpProvider) Close() error { return nil }
