package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/jarchive-crawler/internal/progress"
)

// LogSink emits structured logs for debugging progress streams. It is useful
// during development or audits where a metrics backend is unavailable.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Record logs the event using structured fields.
func (s *LogSink) Record(_ context.Context, evt progress.Event) error {
	fields := []zap.Field{
		zap.String("run_id", evt.RunID.String()),
		zap.String("stage", string(evt.Stage)),
		zap.String("season", evt.Season),
		zap.String("episode", evt.Episode),
		zap.String("url", evt.URL),
		zap.Int64("clues", evt.Clues),
		zap.Bool("cache_hit", evt.CacheHit),
		zap.String("status_class", string(evt.StatusClass)),
		zap.Duration("dur", evt.Dur),
		zap.String("note", evt.Note),
	}
	s.logger.Info("progress event", fields...)
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
