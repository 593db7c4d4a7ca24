package crawler

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Fetcher retrieves one page by URL. Implementations are synchronous: one
// request in flight at a time.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// Extractor turns one episode page's markup into partial clue records.
// Per-clue problems are skipped, not surfaced; only a document that cannot
// be parsed at all yields an error.
type Extractor interface {
	Extract(pageURL string, body []byte) ([]Clue, error)
}

// ClueStore is the subset of the persistence layer the crawl loop needs.
type ClueStore interface {
	UpsertClue(ctx context.Context, clue Clue) error
	SeasonNumbers(ctx context.Context) ([]string, error)
	EpisodeNumbers(ctx context.Context, season string) ([]string, error)
	CountClues(ctx context.Context) (int64, error)
}

// SeasonPlanner picks the season a crawl step should work on.
type SeasonPlanner interface {
	ListSeasons(ctx context.Context) ([]Season, error)
	PlanNext(ctx context.Context, seasons []Season) (*Season, error)
}

// Exporter republishes the accumulated dataset as static artifacts.
type Exporter interface {
	Export(ctx context.Context) error
}

// Notifier publishes the summary of a finished crawl step.
type Notifier interface {
	Publish(ctx context.Context, summary RunSummary) error
}

// Hasher computes digests used for page cache keys.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewRawID() (uuid.UUID, error)
}
