package crawler

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/jarchive-crawler/internal/progress"
)

// EngineConfig carries the per-run knobs for the crawl engine.
type EngineConfig struct {
	// BaseURL resolves the relative links the archive uses.
	BaseURL *url.URL
	// MaxEpisodes caps how many new episodes one step may fetch; zero means
	// no cap.
	MaxEpisodes int
}

// Engine drives one incremental crawl step: plan a target season, fetch its
// missing episodes one at a time, persist their clues, then republish the
// export artifacts. Execution is strictly sequential; there is never more
// than one fetch in flight.
type Engine struct {
	cfg       EngineConfig
	planner   SeasonPlanner
	fetcher   Fetcher
	extractor Extractor
	store     ClueStore
	exporter  Exporter
	notifier  Notifier
	recorder  progress.Emitter
	ids       IDGenerator
	clock     Clock
	logger    *zap.Logger
}

// NewEngine assembles the crawl engine from its collaborators.
func NewEngine(
	cfg EngineConfig,
	planner SeasonPlanner,
	fetcher Fetcher,
	extractor Extractor,
	store ClueStore,
	exporter Exporter,
	notifier Notifier,
	recorder progress.Emitter,
	ids IDGenerator,
	clock Clock,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:       cfg,
		planner:   planner,
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		exporter:  exporter,
		notifier:  notifier,
		recorder:  recorder,
		ids:       ids,
		clock:     clock,
		logger:    logger,
	}
}

// RunOnce performs one incremental resume step. It is safe to interrupt: each
// clue upsert is durable, so a later run replans from whatever was committed.
// The only fatal failures are an unreachable season listing, a store that
// cannot be queried, and a failed export.
func (e *Engine) RunOnce(ctx context.Context) error {
	started := e.clock.Now()
	runID, err := e.ids.NewRawID()
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}
	logger := e.logger.With(zap.String("run_id", runID.String()))
	e.emit(ctx, runID, progress.Event{Stage: progress.StageRunStart})

	seasons, err := e.planner.ListSeasons(ctx)
	if err != nil {
		e.emit(ctx, runID, progress.Event{Stage: progress.StageRunError, Note: "season listing unreachable"})
		return fmt.Errorf("could not fetch seasons: %w", err)
	}

	target, err := e.planner.PlanNext(ctx, seasons)
	if err != nil {
		e.emit(ctx, runID, progress.Event{Stage: progress.StageRunError, Note: "planning failed"})
		return fmt.Errorf("plan next season: %w", err)
	}
	if target == nil {
		logger.Info("all seasons are scraped and up to date")
		e.emit(ctx, runID, progress.Event{Stage: progress.StageRunDone, Dur: e.clock.Now().Sub(started)})
		return nil
	}

	logger.Info("targeting season", zap.String("season", target.Number))
	e.emit(ctx, runID, progress.Event{Stage: progress.StageSeasonTarget, Season: target.Number})

	summary, err := e.scrapeSeason(ctx, runID, logger, *target)
	if err != nil {
		e.emit(ctx, runID, progress.Event{Stage: progress.StageRunError, Season: target.Number, Note: err.Error()})
		return err
	}

	exportStart := e.clock.Now()
	if err := e.exporter.Export(ctx); err != nil {
		e.emit(ctx, runID, progress.Event{Stage: progress.StageRunError, Season: target.Number, Note: "export failed"})
		return fmt.Errorf("export dataset: %w", err)
	}
	e.emit(ctx, runID, progress.Event{Stage: progress.StageExportDone, Dur: e.clock.Now().Sub(exportStart)})

	summary.RunID = runID.String()
	summary.FinishedAt = e.clock.Now()
	if total, err := e.store.CountClues(ctx); err == nil {
		summary.TotalClues = total
	} else {
		logger.Warn("could not count persisted clues", zap.Error(err))
	}
	if err := e.notifier.Publish(ctx, summary); err != nil {
		logger.Warn("run notification failed", zap.Error(err))
	}

	logger.Info("crawl step finished",
		zap.String("season", summary.Season),
		zap.Int("new_episodes", summary.NewEpisodes),
		zap.Int("skipped_episodes", summary.SkippedEpisodes),
		zap.Int64("clues_upserted", summary.CluesUpserted),
	)
	e.emit(ctx, runID, progress.Event{
		Stage:  progress.StageRunDone,
		Season: summary.Season,
		Clues:  summary.CluesUpserted,
		Dur:    e.clock.Now().Sub(started),
	})
	return nil
}

// scrapeSeason fetches every not-yet-persisted episode of the target season
// in document order. Episode-level failures are logged and skipped; they stay
// retryable because nothing about them is cached or persisted.
func (e *Engine) scrapeSeason(ctx context.Context, runID uuid.UUID, logger *zap.Logger, target Season) (RunSummary, error) {
	summary := RunSummary{Season: target.Number}

	episodes, err := e.listSeasonEpisodes(ctx, logger, target)
	if err != nil {
		// The index page is unreachable or unreadable this run. Nothing was
		// persisted for it, so the planner will come back to this season.
		logger.Warn("season index unavailable, nothing to scrape",
			zap.String("season", target.Number),
			zap.Error(err),
		)
		return summary, nil
	}

	persisted, err := e.store.EpisodeNumbers(ctx, target.Number)
	if err != nil {
		return summary, fmt.Errorf("list persisted episodes for season %s: %w", target.Number, err)
	}
	persistedSet := make(map[string]struct{}, len(persisted))
	for _, number := range persisted {
		persistedSet[number] = struct{}{}
	}

	attempted := 0
	for _, episode := range episodes {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if e.cfg.MaxEpisodes > 0 && attempted >= e.cfg.MaxEpisodes {
			logger.Info("episode cap reached", zap.Int("max_episodes", e.cfg.MaxEpisodes))
			break
		}
		if _, ok := persistedSet[episode.Number]; ok {
			continue
		}
		attempted++

		start := e.clock.Now()
		upserted, err := e.scrapeEpisode(ctx, episode)
		if err != nil {
			summary.SkippedEpisodes++
			logger.Warn("skipping episode",
				zap.String("episode", episode.Number),
				zap.String("url", episode.URL),
				zap.Error(err),
			)
			e.emit(ctx, runID, progress.Event{
				Stage:   progress.StageEpisodeSkip,
				Season:  target.Number,
				Episode: episode.Number,
				URL:     episode.URL,
				Note:    err.Error(),
			})
			continue
		}

		summary.NewEpisodes++
		summary.CluesUpserted += upserted
		logger.Info("episode scraped",
			zap.String("episode", episode.Number),
			zap.Int64("clues", upserted),
		)
		e.emit(ctx, runID, progress.Event{
			Stage:   progress.StageEpisodeDone,
			Season:  target.Number,
			Episode: episode.Number,
			URL:     episode.URL,
			Clues:   upserted,
			Dur:     e.clock.Now().Sub(start),
		})
	}

	if summary.NewEpisodes == 0 {
		logger.Info("season is already up to date", zap.String("season", target.Number))
	}
	return summary, nil
}

// listSeasonEpisodes re-lists the target season's episode links.
func (e *Engine) listSeasonEpisodes(ctx context.Context, logger *zap.Logger, target Season) ([]Episode, error) {
	page, err := e.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		return nil, err
	}
	return parseEpisodeLinks(e.cfg.BaseURL, target.Number, page.Body, logger)
}

// scrapeEpisode fetches one episode page, extracts its clues, and upserts
// them one at a time. A write failure aborts the rest of this episode's
// writes so a half-written clue set is never reported as success.
func (e *Engine) scrapeEpisode(ctx context.Context, episode Episode) (int64, error) {
	page, err := e.fetcher.Fetch(ctx, episode.URL)
	if err != nil {
		return 0, err
	}

	clues, err := e.extractor.Extract(episode.URL, page.Body)
	if err != nil {
		return 0, err
	}

	var airDate *time.Time
	if !episode.AirDate.IsZero() {
		aired := episode.AirDate
		airDate = &aired
	}

	var upserted int64
	for i := range clues {
		clue := clues[i]
		clue.Episode = episode.Number
		clue.Season = episode.Season
		clue.AirDate = airDate
		clue.UID = DeriveUID(episode.Number, clue.Category, clue.DollarValue, clue.OrderNumber)
		if err := e.store.UpsertClue(ctx, clue); err != nil {
			return upserted, fmt.Errorf("upsert clue %s: %w", clue.UID, err)
		}
		upserted++
	}
	return upserted, nil
}

func (e *Engine) emit(ctx context.Context, runID uuid.UUID, evt progress.Event) {
	if e.recorder == nil {
		return
	}
	evt.RunID = runID
	evt.TS = e.clock.Now()
	e.recorder.Emit(ctx, evt)
}
