package crawler

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"go.uber.org/zap"
)

// Planner decides which season the next crawl step should work on. The policy
// is fixed: finish an interrupted season before starting a newer one, and
// prefer newer seasons over older ones when starting fresh.
type Planner struct {
	fetcher    Fetcher
	store      ClueStore
	seasonsURL string
	base       *url.URL
	logger     *zap.Logger
}

// NewPlanner builds a Planner. base resolves the relative links the archive
// uses on its listing pages.
func NewPlanner(fetcher Fetcher, store ClueStore, seasonsURL string, base *url.URL, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		fetcher:    fetcher,
		store:      store,
		seasonsURL: seasonsURL,
		base:       base,
		logger:     logger,
	}
}

// SeasonRank interprets a season token as a number for newest-first ordering.
// Tokens that are not plain integers (the archive has a few named seasons)
// rank lowest.
func SeasonRank(token string) int {
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0
	}
	return n
}

// SortSeasonsDesc orders seasons newest first by SeasonRank. The sort is
// stable so seasons with equal rank keep their document order.
func SortSeasonsDesc(seasons []Season) {
	sort.SliceStable(seasons, func(i, j int) bool {
		return SeasonRank(seasons[i].Number) > SeasonRank(seasons[j].Number)
	})
}

// ListSeasons fetches the season listing page and returns every season on it
// in document order. This is the only fetch whose failure aborts a run.
func (p *Planner) ListSeasons(ctx context.Context) ([]Season, error) {
	page, err := p.fetcher.Fetch(ctx, p.seasonsURL)
	if err != nil {
		return nil, err
	}
	seasons, err := parseSeasonList(p.base, page.Body)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("season listing parsed", zap.Int("seasons", len(seasons)))
	return seasons, nil
}

// PlanNext returns the season the next step should scrape, or nil when every
// known season is persisted and complete.
//
// Selection order:
//  1. the newest already-persisted season whose index page lists more
//     episodes than the store holds (resume in progress);
//  2. if nothing is persisted yet, the newest season (bootstrap);
//  3. otherwise the newest season not yet persisted.
//
// A persisted season whose index page cannot be fetched is skipped for this
// run; it stays a resume candidate for the next one.
func (p *Planner) PlanNext(ctx context.Context, seasons []Season) (*Season, error) {
	if len(seasons) == 0 {
		return nil, fmt.Errorf("season listing is empty")
	}

	sorted := append([]Season(nil), seasons...)
	SortSeasonsDesc(sorted)

	persisted, err := p.store.SeasonNumbers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list persisted seasons: %w", err)
	}
	persistedSet := make(map[string]struct{}, len(persisted))
	for _, number := range persisted {
		persistedSet[number] = struct{}{}
	}

	for i, season := range sorted {
		if _, ok := persistedSet[season.Number]; !ok {
			continue
		}
		expected, err := p.expectedEpisodes(ctx, season)
		if err != nil {
			p.logger.Warn("cannot check season completeness, skipping this run",
				zap.String("season", season.Number),
				zap.Error(err),
			)
			continue
		}
		actual, err := p.store.EpisodeNumbers(ctx, season.Number)
		if err != nil {
			return nil, fmt.Errorf("list persisted episodes for season %s: %w", season.Number, err)
		}
		if len(actual) < expected {
			p.logger.Info("resuming incomplete season",
				zap.String("season", season.Number),
				zap.Int("persisted", len(actual)),
				zap.Int("expected", expected),
			)
			return &sorted[i], nil
		}
	}

	if len(persisted) == 0 {
		p.logger.Info("empty store, starting with newest season",
			zap.String("season", sorted[0].Number),
		)
		return &sorted[0], nil
	}

	for i, season := range sorted {
		if _, ok := persistedSet[season.Number]; !ok {
			p.logger.Info("starting new season", zap.String("season", season.Number))
			return &sorted[i], nil
		}
	}

	return nil, nil
}

// expectedEpisodes counts the episode links on a season's index page.
func (p *Planner) expectedEpisodes(ctx context.Context, season Season) (int, error) {
	page, err := p.fetcher.Fetch(ctx, season.URL)
	if err != nil {
		return 0, err
	}
	return countEpisodeLinks(page.Body)
}
