package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/JakeFAU/jarchive-crawler/internal/crawler"
)

// PubSubProvider implements the Provider interface for Google Cloud Pub/Sub.
type PubSubProvider struct {
	Client *pubsub.Client
	Topic  *pubsub.Topic
	Logger *zap.Logger
}

// NewPubSubProvider creates a new Pub/Sub client and gets a handle to the
// specified topic. It authenticates using Google Cloud's Application Default
// Credentials and verifies the topic exists before returning.
func NewPubSubProvider(ctx context.Context, projectID, topicID string, logger *zap.Logger) (*PubSubProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("failed to close pubsub client after topic existence check failure",
				zap.Error(closeErr))
		}
		return nil, fmt.Errorf("failed to check for topic existence: %w", err)
	}
	if !exists {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("failed to close pubsub client after missing topic",
				zap.Error(closeErr))
		}
		return nil, fmt.Errorf("pubsub topic '%s' does not exist in project '%s'", topicID, projectID)
	}

	return &PubSubProvider{
		Client: client,
		Topic:  topic,
		Logger: logger,
	}, nil
}

// Publish marshals the run summary to JSON and sends it to the topic. The
// crawl runs at most one step per invocation, so it waits for the server to
// acknowledge the message rather than firing and forgetting.
func (p *PubSubProvider) Publish(ctx context.Context, summary crawler.RunSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}

	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"run_id": summary.RunID,
			"season": summary.Season,
		},
	}
	result := p.Topic.Publish(ctx, msg)
	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publish run summary: %w", err)
	}
	if p.Logger != nil {
		p.Logger.Debug("published run summary",
			zap.String("message_id", id),
			zap.String("run_id", summary.RunID))
	}
	return nil
}

// Close stops the topic's publisher goroutines and closes the underlying
// client connection.
func (p *PubSubProvider) Close() error {
	if p.Topic != nil {
		p.Topic.Stop()
	}
	if p.Client != nil {
		if err := p.Client.Close(); err != nil {
			return fmt.Errorf("failed to close pubsub client: %w", err)
		}
	}
	return nil
}
