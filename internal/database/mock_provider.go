// Package database defines the interfaces for persisting extracted clues.
package database

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/JakeFAU/jarchive-crawler/internal/crawler"
)

// MockProvider is a mock implementation of the Provider interface for testing.
type MockProvider struct {
	mock.Mock
}

// UpsertClue is the mock implementation of the UpsertClue method.
func (m *MockProvider) UpsertClue(ctx context.Context, clue crawler.Clue) error {
	args := m.Called(ctx, clue)
	return args.Error(0) //nolint:wrapcheck
}

// SeasonNumbers is the mock implementation of the SeasonNumbers method.
func (m *MockProvider) SeasonNumbers(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck
	}
	return args.Get(0).([]string), args.Error(1) //nolint:wrapcheck
}

// EpisodeNumbers is the mock implementation of the EpisodeNumbers method.
func (m *MockProvider) EpisodeNumbers(ctx context.Context, season string) ([]string, error) {
	args := m.Called(ctx, season)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck
	}
	return args.Get(0).([]string), args.Error(1) //nolint:wrapcheck
}

// SeasonEpisodes is the mock implementation of the SeasonEpisodes method.
func (m *MockProvider) SeasonEpisodes(ctx context.Context, season string) ([]EpisodeRow, error) {
	args := m.Called(ctx, season)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck
	}
	return args.Get(0).([]EpisodeRow), args.Error(1) //nolint:wrapcheck
}

// SeasonClues is the mock implementation of the SeasonClues method.
func (m *MockProvider) SeasonClues(ctx context.Context, season string) ([]crawler.Clue, error) {
	args := m.Called(ctx, season)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck
	}
	return args.Get(0).([]crawler.Clue), args.Error(1) //nolint:wrapcheck
}

// CountClues is the mock implementation of the CountClues method.
func (m *MockProvider) CountClues(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1) //nolint:wrapcheck
}

// Close is the mock implementation of the Close method.
func (m *MockProvider) Close() {
	m.Called()
}
