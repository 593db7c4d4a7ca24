// Package database defines the interfaces for persisting extracted clues.
// By using an interface, we decouple the application from a specific database
// implementation, allowing for easier testing and flexibility in the future.
package database

import (
	"context"
	"time"

	"github.com/JakeFAU/jarchive-crawler/internal/crawler"
)

// EpisodeRow is one distinct aired episode within a season, as persisted.
type EpisodeRow struct {
	Episode string
	AirDate *time.Time
}

// Provider defines the common interface for our database layer.
// This allows us to use a real Postgres database in production and a mock
// (NoOpProvider) in tests or for local development.
type Provider interface {
	// UpsertClue inserts a clue or fully overwrites the existing row that
	// shares its uid.
	UpsertClue(ctx context.Context, clue crawler.Clue) error

	// SeasonNumbers returns the distinct season tokens that have at least one
	// persisted clue.
	SeasonNumbers(ctx context.Context) ([]string, error)

	// EpisodeNumbers returns the distinct episode numbers persisted for a
	// season.
	EpisodeNumbers(ctx context.Context, season string) ([]string, error)

	// SeasonEpisodes returns the distinct (episode, air date) pairs for a
	// season, newest air date first.
	SeasonEpisodes(ctx context.Context, season string) ([]EpisodeRow, error)

	// SeasonClues returns every clue for a season ordered by air date
	// descending, then episode descending, then order number ascending.
	SeasonClues(ctx context.Context, season string) ([]crawler.Clue, error)

	// CountClues reports the total number of persisted clues.
	CountClues(ctx context.Context) (int64, error)

	// Close terminates the database connection and releases any resources.
	Close()
}

// NoOpProvider is a database provider that performs no operations.
// It is useful for dry runs where clues are extracted but not persisted.
type NoOpProvider struct{}

// UpsertClue for NoOpProvider does nothing and returns no error.
func (n *NoOpProvider) UpsertClue(_ context.Context, _ crawler.Clue) error { return nil }

// SeasonNumbers for NoOpProvider reports an empty archive.
func (n *NoOpProvider) SeasonNumbers(_ context.Context) ([]string, error) { return nil, nil }

// EpisodeNumbers for NoOpProvider reports an empty season.
func (n *NoOpProvider) EpisodeNumbers(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

// SeasonEpisodes for NoOpProvider reports an empty season.
func (n *NoOpProvider) SeasonEpisodes(_ context.Context, _ string) ([]EpisodeRow, error) {
	return nil, nil
}

// SeasonClues for NoOpProvider reports an empty season.
func (n *NoOpProvider) SeasonClues(_ context.Context, _ string) ([]crawler.Clue, error) {
	return nil, nil
}

// CountClues for NoOpProvider reports zero clues.
func (n *NoOpProvider) CountClues(_ context.Context) (int64, error) { return 0, nil }

// Close for NoOpProvider does nothing.
func (n *NoOpProvider) Close() {}
