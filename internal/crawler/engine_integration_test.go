package crawler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/jarchive-crawler/internal/clock/system"
	"github.com/JakeFAU/jarchive-crawler/internal/crawler"
	"github.com/JakeFAU/jarchive-crawler/internal/database"
	"github.com/JakeFAU/jarchive-crawler/internal/export"
	"github.com/JakeFAU/jarchive-crawler/internal/hash/sha256"
	idgen "github.com/JakeFAU/jarchive-crawler/internal/id/uuid"
	"github.com/JakeFAU/jarchive-crawler/internal/notify"
	"github.com/JakeFAU/jarchive-crawler/internal/progress"
	"github.com/JakeFAU/jarchive-crawler/internal/progress/sinks"
	"github.com/JakeFAU/jarchive-crawler/internal/storage"
	"github.com/JakeFAU/jarchive-crawler/internal/storage/memory"
)

// archiveDB is an in-memory database.Provider with the same ordering
// semantics as the Postgres implementation.
type archiveDB struct {
	mu    sync.Mutex
	clues map[string]crawler.Clue
}

func newArchiveDB() *archiveDB {
	return &archiveDB{clues: make(map[string]crawler.Clue)}
}

func (db *archiveDB) UpsertClue(_ context.Context, clue crawler.Clue) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.clues[clue.UID] = clue
	return nil
}

func (db *archiveDB) SeasonNumbers(_ context.Context) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	seen := make(map[string]struct{})
	var seasons []string
	for _, clue := range db.clues {
		if _, ok := seen[clue.Season]; !ok {
			seen[clue.Season] = struct{}{}
			seasons = append(seasons, clue.Season)
		}
	}
	sort.Strings(seasons)
	return seasons, nil
}

func (db *archiveDB) EpisodeNumbers(_ context.Context, season string) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	seen := make(map[string]struct{})
	var episodes []string
	for _, clue := range db.clues {
		if clue.Season != season {
			continue
		}
		if _, ok := seen[clue.Episode]; !ok {
			seen[clue.Episode] = struct{}{}
			episodes = append(episodes, clue.Episode)
		}
	}
	sort.Strings(episodes)
	return episodes, nil
}

func (db *archiveDB) SeasonEpisodes(_ context.Context, season string) ([]database.EpisodeRow, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	byEpisode := make(map[string]*time.Time)
	for _, clue := range db.clues {
		if clue.Season == season {
			byEpisode[clue.Episode] = clue.AirDate
		}
	}
	rows := make([]database.EpisodeRow, 0, len(byEpisode))
	for episode, aired := range byEpisode {
		rows = append(rows, database.EpisodeRow{Episode: episode, AirDate: aired})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !airDatesEqual(a.AirDate, b.AirDate) {
			return airDateAfter(a.AirDate, b.AirDate)
		}
		return a.Episode > b.Episode
	})
	return rows, nil
}

func (db *archiveDB) SeasonClues(_ context.Context, season string) ([]crawler.Clue, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var clues []crawler.Clue
	for _, clue := range db.clues {
		if clue.Season == season {
			clues = append(clues, clue)
		}
	}
	sort.Slice(clues, func(i, j int) bool {
		a, b := clues[i], clues[j]
		if !airDatesEqual(a.AirDate, b.AirDate) {
			return airDateAfter(a.AirDate, b.AirDate)
		}
		if a.Episode != b.Episode {
			return a.Episode > b.Episode
		}
		if a.OrderNumber != b.OrderNumber {
			return a.OrderNumber < b.OrderNumber
		}
		return a.UID < b.UID
	})
	return clues, nil
}

func (db *archiveDB) CountClues(_ context.Context) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return int64(len(db.clues)), nil
}

func (db *archiveDB) Close() {}

func (db *archiveDB) get(uid string) (crawler.Clue, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	clue, ok := db.clues[uid]
	return clue, ok
}

func airDatesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func airDateAfter(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}

// countingHandler serves the fixture site and counts requests per path.
type countingHandler struct {
	mu    sync.Mutex
	hits  map[string]int
	pages map[string]string
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.hits[r.URL.Path]++
	h.mu.Unlock()

	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}
	body, ok := h.pages[key]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(body))
}

func (h *countingHandler) total() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	total := 0
	for path, n := range h.hits {
		if path == "/robots.txt" {
			continue
		}
		total += n
	}
	return total
}

const fixtureListing = `<html><body><div id="content">
<a href="showseason.php?season=31">Season 31</a>
</div></body></html>`

const fixtureSeasonIndex = `<html><body><div id="content">
<table>
<tr><td><a href="showgame.php?game_id=4990">#6895, aired 2014-09-29</a></td></tr>
<tr><td><a href="showgame.php?game_id=4989">#6894, aired 2014-09-28</a></td></tr>
</table>
</div></body></html>`

const fixtureEpisode6895 = `<html><body><div id="content">
<table>
<tr>
  <td class="category_name">SCIENCE</td>
  <td class="category_name">HISTORY</td>
</tr>
<tr>
<td class="clue">
  <table>
    <tr><td class="clue_value">$200</td><td class="clue_order_number"><a href="#">1</a></td></tr>
    <tr><td class="clue_text" id="clue_J_1_1">This force keeps planets in orbit</td></tr>
    <tr><td class="clue_text" id="clue_J_1_1_r">
      <em class="correct_response">gravity</em>
      <table><tr><td class="right">Ken</td></tr></table>
    </td></tr>
  </table>
  <span id="clue_J_1_1_stuck" class="clue_unstuck"></span>
</td>
<td class="clue">
  <table>
    <tr><td class="clue_value">$400</td><td class="clue_order_number"><a href="#">2</a></td></tr>
    <tr><td class="clue_text" id="clue_J_2_1">This wall fell in 1989</td></tr>
    <tr><td class="clue_text" id="clue_J_2_1_r">
      <em class="correct_response">the Berlin Wall</em>
      <table><tr><td class="wrong">Triple Stumper</td></tr></table>
    </td></tr>
  </table>
  <span id="clue_J_2_1_stuck" class="clue_unstuck"></span>
</td>
</tr>
</table>
</div></body></html>`

const fixtureEpisode6894 = `<html><body><div id="content">
<table>
<tr><td class="category_name">OPERA</td></tr>
<tr>
<td class="clue">
  <table>
    <tr><td class="clue_value">$600</td><td class="clue_order_number"><a href="#">5</a></td></tr>
    <tr><td class="clue_text" id="clue_J_1_3">An aria from this Puccini opera</td></tr>
    <tr><td class="clue_text" id="clue_J_1_3_r">
      <em class="correct_response">Tosca</em>
      <table><tr><td class="right">Brad</td></tr></table>
    </td></tr>
  </table>
  <span id="clue_J_1_3_stuck" class="clue_unstuck"></span>
</td>
</tr>
</table>
</div></body></html>`

func newFixtureServer(t *testing.T) (*httptest.Server, *countingHandler) {
	t.Helper()
	handler := &countingHandler{
		hits: make(map[string]int),
		pages: map[string]string{
			"/listseasons.php":           fixtureListing,
			"/showseason.php?season=31":  fixtureSeasonIndex,
			"/showgame.php?game_id=4990": fixtureEpisode6895,
			"/showgame.php?game_id=4989": fixtureEpisode6894,
		},
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, handler
}

// buildArchiveEngine wires the real pipeline components against a fixture
// server, sharing the given page cache and database.
func buildArchiveEngine(
	t *testing.T,
	serverURL string,
	cache storage.Store,
	db database.Provider,
	distDir string,
	reg *prometheus.Registry,
) (*crawler.Engine, *notify.Recorder) {
	t.Helper()
	logger := zap.NewNop()

	base, err := url.Parse(serverURL + "/")
	require.NoError(t, err)

	network, err := crawler.NewCollyFetcher(crawler.CollyConfig{
		UserAgent: "jarchive-test/0.1",
		Timeout:   5 * time.Second,
	}, logger)
	require.NoError(t, err)

	promSink, err := sinks.NewPrometheusSink(reg)
	require.NoError(t, err)
	recorder := progress.NewRecorder(progress.Config{Logger: logger}, promSink)
	t.Cleanup(func() { _ = recorder.Close(context.Background()) })

	fetcher, err := crawler.NewCachingFetcher(network, cache, sha256.New(), 0, time.Millisecond, recorder, logger)
	require.NoError(t, err)

	planner := crawler.NewPlanner(fetcher, db, serverURL+"/listseasons.php", base, logger)

	exporter, err := export.New(export.Config{DistDir: distDir}, db, nil, logger)
	require.NoError(t, err)

	notifier := notify.NewRecorder()

	engine := crawler.NewEngine(
		crawler.EngineConfig{BaseURL: base},
		planner,
		fetcher,
		crawler.NewGoqueryExtractor(logger),
		db,
		exporter,
		notifier,
		recorder,
		idgen.New(),
		system.New(),
		logger,
	)
	return engine, notifier
}

func TestCrawlPipelineEndToEnd(t *testing.T) {
	server, handler := newFixtureServer(t)
	ctx := context.Background()

	cache := memory.NewBlobStore()
	db := newArchiveDB()
	distDir := t.TempDir()
	reg := prometheus.NewRegistry()
	engine, notifier := buildArchiveEngine(t, server.URL, cache, db, distDir, reg)

	// First step: empty store, so the newest (only) season is scraped fully.
	require.NoError(t, engine.RunOnce(ctx))

	total, err := db.CountClues(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	science, ok := db.get("6895_SCIENCE_$200_1")
	require.True(t, ok, "expected the SCIENCE clue keyed by its derived uid")
	assert.Equal(t, "31", science.Season)
	assert.Equal(t, "6895", science.Episode)
	assert.Equal(t, "$200", science.DollarValue)
	assert.Equal(t, "gravity", science.Answer)
	assert.False(t, science.TripleStumper)
	require.NotNil(t, science.AirDate)
	assert.Equal(t, time.Date(2014, 9, 29, 0, 0, 0, 0, time.UTC), science.AirDate.UTC())

	stumper, ok := db.get("6895_HISTORY_$400_2")
	require.True(t, ok)
	assert.True(t, stumper.TripleStumper)
	assert.Equal(t, "Triple Stumper", stumper.Contestant)

	// Listing + season index + two episode pages.
	assert.Equal(t, 4, handler.total())

	summaries := notifier.Summaries()
	require.Len(t, summaries, 1)
	assert.Equal(t, "31", summaries[0].Season)
	assert.Equal(t, 2, summaries[0].NewEpisodes)
	assert.Equal(t, 0, summaries[0].SkippedEpisodes)
	assert.Equal(t, int64(3), summaries[0].CluesUpserted)
	assert.Equal(t, int64(3), summaries[0].TotalClues)
	assert.NotEmpty(t, summaries[0].RunID)

	// Export artifacts reflect the scraped season.
	seasonsRaw, err := os.ReadFile(filepath.Join(distDir, "data", "seasons.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"season":"31"}]`, string(seasonsRaw))

	seasonRaw, err := os.ReadFile(filepath.Join(distDir, "data", "season_31.json"))
	require.NoError(t, err)
	var seasonData export.SeasonData
	require.NoError(t, json.Unmarshal(seasonRaw, &seasonData))

	require.Len(t, seasonData.Episodes, 2)
	assert.Equal(t, "6895", seasonData.Episodes[0].Episode)
	assert.Equal(t, "2014-09-29", seasonData.Episodes[0].FormattedDate)
	assert.Equal(t, "6894", seasonData.Episodes[1].Episode)

	require.Len(t, seasonData.Clues, 3)
	assert.Equal(t, "6895_SCIENCE_$200_1", seasonData.Clues[0].UID)
	assert.Equal(t, "2014-09-29", seasonData.Clues[0].FormattedDate)

	indexRaw, err := os.ReadFile(filepath.Join(distDir, "index.html"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(indexRaw), "data/seasons.json"))

	// Second step: everything is persisted, so the run is a no-op that never
	// touches the network; the season listing and index come from the cache.
	require.NoError(t, engine.RunOnce(ctx))

	total, err = db.CountClues(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, 4, handler.total(), "a fully scraped archive must not refetch anything")
	assert.Len(t, notifier.Summaries(), 1, "a no-op step publishes no summary")

	// One fetch series for misses and one for cache hits.
	count, err := testutil.GatherAndCount(reg, "jarchive_fetch_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCrawlPipelineResumesInterruptedSeason(t *testing.T) {
	server, handler := newFixtureServer(t)
	ctx := context.Background()

	cache := memory.NewBlobStore()

	// Warm the cache with a full scrape into a throwaway database.
	warmDB := newArchiveDB()
	warmEngine, _ := buildArchiveEngine(t, server.URL, cache, warmDB, t.TempDir(), prometheus.NewRegistry())
	require.NoError(t, warmEngine.RunOnce(ctx))
	baseline := handler.total()

	// A database holding only episode 6895 models a step that was cut short.
	db := newArchiveDB()
	aired := time.Date(2014, 9, 29, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.UpsertClue(ctx, crawler.Clue{
		UID:         "6895_SCIENCE_$200_1",
		Episode:     "6895",
		Season:      "31",
		AirDate:     &aired,
		Category:    "SCIENCE",
		DollarValue: "$200",
		OrderNumber: "1",
	}))

	engine, notifier := buildArchiveEngine(t, server.URL, cache, db, t.TempDir(), prometheus.NewRegistry())
	require.NoError(t, engine.RunOnce(ctx))

	// Only the missing episode was scraped, and entirely from the cache.
	summaries := notifier.Summaries()
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].NewEpisodes)
	assert.Equal(t, baseline, handler.total(), "resume must reuse cached pages")

	episodes, err := db.EpisodeNumbers(ctx, "31")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"6894", "6895"}, episodes)

	_, ok := db.get("6894_OPERA_$600_5")
	assert.True(t, ok)
}
