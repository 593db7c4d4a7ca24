package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/jarchive-crawler/internal/app"
	"github.com/JakeFAU/jarchive-crawler/internal/config"
	"github.com/JakeFAU/jarchive-crawler/internal/database"
	"github.com/JakeFAU/jarchive-crawler/internal/notify"
	"github.com/JakeFAU/jarchive-crawler/internal/storage"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands will use.
// This allows us to inject a mock app during tests.
type App interface {
	Close()
	GetConfig() config.Config
	GetLogger() *zap.Logger
	GetCache() storage.Store
	GetDatabase() database.Provider
	GetNotifier() notify.Provider
	GetMirror() storage.Store
	GetRegistry() *prometheus.Registry
}

// newApp is the application factory. It's a variable so we can
// replace it with a mock factory in our tests.
var newApp func(ctx context.Context, cfg config.Config) (App, error) = func(ctx context.Context, cfg config.Config) (App, error) {
	return app.NewApp(ctx, cfg)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jarchive",
		Short: "An incremental crawler for the J! Archive trivia site.",
		Long: `jarchive builds a local trivia-clue database from the J! Archive site,
one season at a time. Each run picks the most recent season that still has
unscraped episodes, fetches those episodes politely, upserts their clues, and
republishes a static browsing site from the accumulated data.`,

		// A bare invocation performs one incremental step, the same as the
		// crawl subcommand with no episode cap.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawlCommand(cmd.Context(), 0)
		},

		// This hook runs BEFORE the subcommand's RunE; it loads the
		// configuration, builds the application services, and stores them in
		// the command context for subcommands to use.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			appInstance, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		// This hook ensures services are shut down gracefully.
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: environment variables only)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// resolveApp retrieves the application services placed in the context by the
// root command's PersistentPreRunE hook.
func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
