// Package app initializes and holds long-lived application services, acting
// as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/JakeFAU/jarchive-crawler/internal/config"
	"github.com/JakeFAU/jarchive-crawler/internal/database"
	"github.com/JakeFAU/jarchive-crawler/internal/logging"
	"github.com/JakeFAU/jarchive-crawler/internal/notify"
	"github.com/JakeFAU/jarchive-crawler/internal/storage"
	"github.com/JakeFAU/jarchive-crawler/internal/storage/gcs"
	"github.com/JakeFAU/jarchive-crawler/internal/storage/local"
	"github.com/JakeFAU/jarchive-crawler/internal/storage/memory"
)

// App holds all the shared, long-lived services for the application: the
// logger, page cache, clue database, run notifier, optional export mirror,
// and the Prometheus registry. It is initialized once at startup and passed
// to the commands that need it.
type App struct {
	cfg          config.Config
	logger       *zap.Logger
	cache        storage.Store
	database     database.Provider
	notifier     notify.Provider
	mirror       storage.Store
	mirrorCloser io.Closer
	registry     *prometheus.Registry
}

// GetConfig returns the validated application configuration.
func (a *App) GetConfig() config.Config {
	return a.cfg
}

// GetLogger returns the shared zap logger instance.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetCache exposes the configured page cache store.
func (a *App) GetCache() storage.Store {
	return a.cache
}

// GetDatabase provides access to the clue database provider.
func (a *App) GetDatabase() database.Provider {
	return a.database
}

// GetNotifier returns the provider used to publish run summaries.
func (a *App) GetNotifier() notify.Provider {
	return a.notifier
}

// GetMirror returns the blob store that mirrors export artifacts, or nil when
// no mirror bucket is configured.
func (a *App) GetMirror() storage.Store {
	return a.mirror
}

// GetRegistry returns the Prometheus registry shared by the progress sink and
// the metrics endpoint.
func (a *App) GetRegistry() *prometheus.Registry {
	return a.registry
}

// NewApp creates and initializes a new App from the loaded configuration.
// It is the central point for service initialization and fails fast if any
// critical service cannot be built.
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("initializing application services")

	// 1. Page cache. Every fetched page lands here permanently so re-crawls
	// never hit the network for a page already seen.
	var cache storage.Store
	switch cfg.Cache.Provider {
	case "local":
		logger.Info("using local page cache", zap.String("dir", cfg.Cache.Dir))
		cache, err = local.New(local.Config{BaseDir: cfg.Cache.Dir})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize page cache: %w", err)
		}
	case "memory":
		logger.Info("using in-memory page cache; pages will not survive restarts")
		cache = memory.NewBlobStore()
	default:
		return nil, fmt.Errorf("unknown cache provider: %s", cfg.Cache.Provider)
	}

	// 2. Clue database.
	var db database.Provider
	switch cfg.DB.Provider {
	case "postgres":
		if cfg.DB.DSN == "" {
			return nil, fmt.Errorf("db provider is 'postgres' but db.dsn is not set")
		}
		logger.Info("connecting to PostgreSQL", zap.String("table", cfg.DB.Table))
		pg, pgErr := database.NewPostgresProvider(ctx, database.PostgresConfig{
			DSN:      cfg.DB.DSN,
			Table:    cfg.DB.Table,
			MaxConns: int32(cfg.DB.MaxConns), // #nosec G115 -- validated small positive int.
		})
		if pgErr != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", pgErr)
		}
		if schemaErr := pg.EnsureSchema(ctx); schemaErr != nil {
			pg.Close()
			return nil, fmt.Errorf("failed to ensure database schema: %w", schemaErr)
		}
		db = pg
	case "noop":
		logger.Info("using no-op database provider; clues will be discarded")
		db = &database.NoOpProvider{}
	default:
		return nil, fmt.Errorf("unknown db provider: %s", cfg.DB.Provider)
	}

	// 3. Run notifier.
	var notifier notify.Provider
	switch cfg.Notify.Provider {
	case "pubsub":
		if cfg.Notify.ProjectID == "" || cfg.Notify.TopicName == "" {
			return nil, fmt.Errorf("notify provider is 'pubsub' but project_id or topic_name is not set")
		}
		logger.Info("connecting to GCP Pub/Sub", zap.String("topic", cfg.Notify.TopicName))
		notifier, err = notify.NewPubSubProvider(ctx, cfg.Notify.ProjectID, cfg.Notify.TopicName, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize notifier: %w", err)
		}
	case "noop":
		logger.Info("using no-op notifier; no run summaries will be sent")
		notifier = &notify.NoOpProvider{}
	default:
		return nil, fmt.Errorf("unknown notify provider: %s", cfg.Notify.Provider)
	}

	// 4. Optional export mirror.
	var (
		mirror       storage.Store
		mirrorCloser io.Closer
	)
	if cfg.Export.MirrorBucket != "" {
		logger.Info("mirroring export artifacts to GCS", zap.String("bucket", cfg.Export.MirrorBucket))
		gcsStore, gcsErr := gcs.Dial(ctx, gcs.Config{Bucket: cfg.Export.MirrorBucket})
		if gcsErr != nil {
			return nil, fmt.Errorf("failed to initialize export mirror: %w", gcsErr)
		}
		mirror = gcsStore
		mirrorCloser = gcsStore
	}

	logger.Info("application services initialized")

	return &App{
		cfg:          cfg,
		logger:       logger,
		cache:        cache,
		database:     db,
		notifier:     notifier,
		mirror:       mirror,
		mirrorCloser: mirrorCloser,
		registry:     prometheus.NewRegistry(),
	}, nil
}

// Close gracefully shuts down all services in the App container.
// It is called by a Cobra hook after the command finishes execution.
func (a *App) Close() {
	a.logger.Info("shutting down application services")
	a.database.Close()
	if err := a.notifier.Close(); err != nil {
		a.logger.Warn("error closing notifier", zap.Error(err))
	}
	if a.mirrorCloser != nil {
		if err := a.mirrorCloser.Close(); err != nil {
			a.logger.Warn("error closing export mirror", zap.Error(err))
		}
	}
	// Flushing the logger is best effort; stderr sync errors are expected on
	// some platforms.
	_ = a.logger.Sync()
}
