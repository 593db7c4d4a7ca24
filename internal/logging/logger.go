// Package logging builds the zap loggers used by every command.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns the process-wide logger. Development mode yields colored
// console output for watching a crawl interactively; otherwise the logger
// emits production JSON suitable for log shipping.
func New(development bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	// Crawl runs are correlated across log lines, progress events, and run
	// notifications by timestamp, so the key is uniform everywhere.
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.DisableStacktrace = development

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
