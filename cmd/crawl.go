// Package cmd defines and implements the CLI commands for the jarchive executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/jarchive-crawler/internal/clock/system"
	"github.com/JakeFAU/jarchive-crawler/internal/crawler"
	"github.com/JakeFAU/jarchive-crawler/internal/export"
	"github.com/JakeFAU/jarchive-crawler/internal/hash/sha256"
	"github.com/JakeFAU/jarchive-crawler/internal/id/uuid"
	"github.com/JakeFAU/jarchive-crawler/internal/progress"
	"github.com/JakeFAU/jarchive-crawler/internal/progress/sinks"
)

// newCrawlCmd creates and configures the 'crawl' subcommand. One invocation
// performs one incremental step: it targets the newest season with unscraped
// episodes, fetches only those, and republishes the export artifacts.
func newCrawlCmd() *cobra.Command {
	var maxEpisodes int

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Runs one incremental crawl step",
		Long: `Fetches the season listing, picks the most recent season that still has
unscraped episodes, and scrapes those episodes one at a time with a randomized
courtesy delay between requests. Already-scraped episodes are skipped, so
repeated invocations walk the archive backwards season by season. Every step
finishes by regenerating the static site from the full accumulated dataset.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawlCommand(cmd.Context(), maxEpisodes)
		},
	}

	cmd.Flags().IntVar(&maxEpisodes, "max-episodes", 0, "cap on new episodes fetched this step (0 = no cap)")

	return cmd
}

func runCrawlCommand(ctx context.Context, maxEpisodes int) error {
	appInstance, err := resolveApp(ctx)
	if err != nil {
		return err
	}
	logger := appInstance.GetLogger()

	engine, recorder, err := buildCrawlerEngine(appInstance, maxEpisodes)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := recorder.Close(context.Background()); cerr != nil {
			logger.Warn("Failed to close progress recorder", zap.Error(cerr))
		}
	}()

	if err := engine.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run crawl step: %w", err)
	}

	logger.Info("Crawl command finished.")
	return nil
}

// buildCrawlerEngine assembles the crawl pipeline from the application's
// shared services plus the per-run components the engine owns.
func buildCrawlerEngine(appInstance App, maxEpisodes int) (*crawler.Engine, *progress.Recorder, error) {
	cfg := appInstance.GetConfig()
	logger := appInstance.GetLogger()

	base, err := url.Parse(cfg.Archive.BaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse archive base url: %w", err)
	}

	promSink, err := sinks.NewPrometheusSink(appInstance.GetRegistry())
	if err != nil {
		return nil, nil, fmt.Errorf("init metrics sink: %w", err)
	}
	recorder := progress.NewRecorder(
		progress.Config{Logger: logger},
		sinks.NewLogSink(logger.Named("progress")),
		promSink,
	)

	network, err := crawler.NewCollyFetcher(crawler.CollyConfig{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	}, logger.Named("fetch"))
	if err != nil {
		return nil, nil, fmt.Errorf("init fetcher: %w", err)
	}

	delayMin, delayMax := cfg.DelayBounds()
	fetcher, err := crawler.NewCachingFetcher(
		network,
		appInstance.GetCache(),
		sha256.New(),
		delayMin, delayMax,
		recorder,
		logger.Named("cache"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("init page cache: %w", err)
	}

	db := appInstance.GetDatabase()
	planner := crawler.NewPlanner(fetcher, db, cfg.Archive.SeasonsURL, base, logger.Named("planner"))

	exporter, err := export.New(
		export.Config{DistDir: cfg.Export.DistDir},
		db,
		appInstance.GetMirror(),
		logger.Named("export"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("init exporter: %w", err)
	}

	engine := crawler.NewEngine(
		crawler.EngineConfig{BaseURL: base, MaxEpisodes: maxEpisodes},
		planner,
		fetcher,
		crawler.NewGoqueryExtractor(logger.Named("extract")),
		db,
		exporter,
		appInstance.GetNotifier(),
		recorder,
		uuid.New(),
		system.New(),
		logger.Named("engine"),
	)
	return engine, recorder, nil
}
