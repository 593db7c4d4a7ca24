package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/jarchive-crawler/internal/export"
)

// newExportCmd creates the 'export' subcommand, which regenerates the static
// site artifacts from the database without crawling anything first.
func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Regenerates the static site from the database",
		Long: `Rebuilds the seasons.json, per-season JSON, and index.html artifacts in
the configured dist directory from whatever clues the database currently
holds. Useful after restoring a database or changing the export layout.`,

		RunE: runExportCommand,
	}
	return cmd
}

func runExportCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := appInstance.GetConfig()
	logger := appInstance.GetLogger()

	exporter, err := export.New(
		export.Config{DistDir: cfg.Export.DistDir},
		appInstance.GetDatabase(),
		appInstance.GetMirror(),
		logger.Named("export"),
	)
	if err != nil {
		return fmt.Errorf("init exporter: %w", err)
	}

	if err := exporter.Export(cmd.Context()); err != nil {
		return fmt.Errorf("export site: %w", err)
	}

	logger.Info("Export command finished.")
	return nil
}
