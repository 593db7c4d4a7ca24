package export

import (
	"sort"
	"time"

	"github.com/JakeFAU/jarchive-crawler/internal/crawler"
	"github.com/JakeFAU/jarchive-crawler/internal/database"
)

// noAirDate is rendered when an episode or clue has no known air date.
const noAirDate = "N/A"

// SeasonEntry is one season token in seasons.json.
type SeasonEntry struct {
	Season string `json:"season"`
}

// EpisodeEntry is one episode row in a season payload. AirDate carries unix
// seconds and is null when the archive never listed a date.
type EpisodeEntry struct {
	Episode       string `json:"episode"`
	AirDate       *int64 `json:"air_date"`
	FormattedDate string `json:"formatted_date"`
}

// ClueEntry mirrors a persisted clue row plus the human-readable air date.
type ClueEntry struct {
	UID           string `json:"uid"`
	Episode       string `json:"episode"`
	Season        string `json:"season"`
	AirDate       *int64 `json:"air_date"`
	Category      string `json:"category"`
	Answer        string `json:"answer"`
	Text          string `json:"text"`
	DollarValue   string `json:"dollar_value"`
	OrderNumber   string `json:"order_number"`
	DJ            bool   `json:"dj"`
	TripleStumper bool   `json:"triple_stumper"`
	ClueRow       string `json:"clue_row"`
	Contestant    string `json:"contestant"`
	FormattedDate string `json:"formatted_date"`
}

// SeasonData is the full payload of one season_<token>.json artifact.
type SeasonData struct {
	Episodes []EpisodeEntry `json:"episodes"`
	Clues    []ClueEntry    `json:"clues"`
}

// NewSeasonEntries orders season tokens newest first and wraps them for
// serialization. Numeric tokens sort descending; named seasons keep their
// stored order after the numeric ones.
func NewSeasonEntries(tokens []string) []SeasonEntry {
	sorted := append([]string(nil), tokens...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return crawler.SeasonRank(sorted[i]) > crawler.SeasonRank(sorted[j])
	})
	entries := make([]SeasonEntry, 0, len(sorted))
	for _, token := range sorted {
		entries = append(entries, SeasonEntry{Season: token})
	}
	return entries
}

// NewEpisodeEntries converts persisted episode rows to their export form,
// preserving the provider's newest-first ordering.
func NewEpisodeEntries(rows []database.EpisodeRow) []EpisodeEntry {
	entries := make([]EpisodeEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, EpisodeEntry{
			Episode:       row.Episode,
			AirDate:       unixOrNil(row.AirDate),
			FormattedDate: FormatAirDate(row.AirDate),
		})
	}
	return entries
}

// NewClueEntries converts persisted clues to their export form, preserving
// the provider's ordering.
func NewClueEntries(clues []crawler.Clue) []ClueEntry {
	entries := make([]ClueEntry, 0, len(clues))
	for _, clue := range clues {
		entries = append(entries, ClueEntry{
			UID:           clue.UID,
			Episode:       clue.Episode,
			Season:        clue.Season,
			AirDate:       unixOrNil(clue.AirDate),
			Category:      clue.Category,
			Answer:        clue.Answer,
			Text:          clue.Text,
			DollarValue:   clue.DollarValue,
			OrderNumber:   clue.OrderNumber,
			DJ:            clue.DoubleRound,
			TripleStumper: clue.TripleStumper,
			ClueRow:       clue.Row,
			Contestant:    clue.Contestant,
			FormattedDate: FormatAirDate(clue.AirDate),
		})
	}
	return entries
}

// FormatAirDate renders an air date as YYYY-MM-DD, or "N/A" when unknown.
func FormatAirDate(t *time.Time) string {
	if t == nil {
		return noAirDate
	}
	return t.UTC().Format("2006-01-02")
}

func unixOrNil(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	v := t.Unix()
	return &v
}
