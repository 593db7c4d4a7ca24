package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/jarchive-crawler/internal/progress"
	"github.com/JakeFAU/jarchive-crawler/internal/storage"
)

// CachingFetcher wraps a network Fetcher with a permanent page cache. A URL
// that was fetched successfully once is served from the cache forever after,
// with no network call and no courtesy delay. Failed fetches are never
// cached, so the same URL stays retryable on a later run.
type CachingFetcher struct {
	network  Fetcher
	cache    storage.Store
	hasher   Hasher
	delays   delayPolicy
	pauser   pauseController
	recorder progress.Emitter
	logger   *zap.Logger
}

// NewCachingFetcher builds the cache-aware fetch path used by the planner and
// the engine. delayMin/delayMax bound the randomized courtesy wait applied
// before each cache miss goes to the network.
func NewCachingFetcher(
	network Fetcher,
	cache storage.Store,
	hasher Hasher,
	delayMin, delayMax time.Duration,
	recorder progress.Emitter,
	logger *zap.Logger,
) (*CachingFetcher, error) {
	if network == nil {
		return nil, errors.New("network fetcher is required")
	}
	if cache == nil {
		return nil, errors.New("cache store is required")
	}
	if hasher == nil {
		return nil, errors.New("hasher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingFetcher{
		network:  network,
		cache:    cache,
		hasher:   hasher,
		delays:   newUniformDelayPolicy(delayMin, delayMax),
		pauser:   &timerPauseController{},
		recorder: recorder,
		logger:   logger,
	}, nil
}

// Fetch returns the page for rawURL, from cache when possible. On a miss it
// waits the courtesy delay, issues exactly one GET, and persists the body
// before returning so the next call for the same URL is a guaranteed hit.
func (f *CachingFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	start := time.Now()
	key, err := f.cacheKey(rawURL)
	if err != nil {
		return Page{}, err
	}

	if body, err := f.cache.Get(ctx, key); err == nil {
		f.logger.Debug("cache hit", zap.String("url", rawURL))
		page := Page{
			URL:        rawURL,
			FinalURL:   rawURL,
			StatusCode: http.StatusOK,
			Body:       body,
			FromCache:  true,
		}
		f.record(ctx, page, time.Since(start))
		return page, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Page{}, fmt.Errorf("read page cache for %s: %w", rawURL, err)
	}

	delay := f.delays.NextDelay()
	f.logger.Debug("cache miss, waiting before fetch",
		zap.String("url", rawURL),
		zap.Duration("delay", delay),
	)
	f.pauser.Pause(ctx, delay)
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	page, err := f.network.Fetch(ctx, rawURL)
	if err != nil {
		return Page{}, err
	}
	if page.StatusCode < 200 || page.StatusCode >= 300 {
		return Page{}, &FetchError{
			URL:        rawURL,
			StatusCode: page.StatusCode,
			Err:        errors.New("non-success status"),
		}
	}

	if err := f.cache.Put(ctx, key, page.Body); err != nil {
		return Page{}, fmt.Errorf("cache page for %s: %w", rawURL, err)
	}
	f.record(ctx, page, time.Since(start))
	return page, nil
}

// cacheKey derives the deterministic cache key for a URL. Keys carry an .html
// suffix so a cache directory stays browsable by hand.
func (f *CachingFetcher) cacheKey(rawURL string) (string, error) {
	digest, err := f.hasher.Hash([]byte(rawURL))
	if err != nil {
		return "", fmt.Errorf("hash url %s: %w", rawURL, err)
	}
	return digest + ".html", nil
}

func (f *CachingFetcher) record(ctx context.Context, page Page, dur time.Duration) {
	if f.recorder == nil {
		return
	}
	f.recorder.Emit(ctx, progress.Event{
		TS:          time.Now().UTC(),
		Stage:       progress.StageFetchDone,
		URL:         page.URL,
		CacheHit:    page.FromCache,
		StatusClass: progress.ClassifyStatus(page.StatusCode),
		Dur:         dur,
	})
}
