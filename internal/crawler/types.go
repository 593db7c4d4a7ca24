package crawler

import (
	"strings"
	"time"
)

// Season is one top-level grouping of episodes discovered on the archive's
// listing page. The number token is opaque: most are numeric but the archive
// also carries named seasons, so callers must not assume an integer.
type Season struct {
	Number string
	URL    string
}

// Episode is one aired game discovered on a season index page.
type Episode struct {
	Number  string
	Season  string
	AirDate time.Time
	URL     string
}

// Clue is one question/answer unit extracted from an episode page. The
// extractor produces partial clues (no episode, season, or air date); the
// engine fills those in before persisting.
type Clue struct {
	UID           string
	Episode       string
	Season        string
	AirDate       *time.Time
	Category      string
	Answer        string
	Text          string
	DollarValue   string
	OrderNumber   string
	DoubleRound   bool
	TripleStumper bool
	Row           string
	Contestant    string
}

// Page is one fetched document. FromCache reports whether the body came from
// the page cache without a network request.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
	FromCache  bool
}

// RunSummary describes the outcome of one crawl step. It is published to the
// configured notifier after a step that targeted a season.
type RunSummary struct {
	RunID           string    `json:"run_id"`
	Season          string    `json:"season"`
	NewEpisodes     int       `json:"new_episodes"`
	SkippedEpisodes int       `json:"skipped_episodes"`
	CluesUpserted   int64     `json:"clues_upserted"`
	TotalClues      int64     `json:"total_clues"`
	FinishedAt      time.Time `json:"finished_at"`
}

// uidDelimiter joins the components of a clue uid. Changing it would orphan
// every previously persisted row, so it is fixed.
const uidDelimiter = "_"

// DeriveUID builds the upsert key for a clue from its episode number,
// category, dollar value, and board order number, in that fixed order.
// It is a plain concatenation rather than a hash so that the key stays
// stable and human-diffable across runs: re-extracting the same clue yields
// the same uid and therefore an idempotent upsert.
func DeriveUID(episode, category, dollarValue, orderNumber string) string {
	return strings.Join([]string{episode, category, dollarValue, orderNumber}, uidDelimiter)
}
