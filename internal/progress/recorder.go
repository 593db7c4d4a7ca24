package progress

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultSinkTimeout = 10 * time.Second

// Config controls how the Recorder invokes its sinks.
//   - SinkTimeout: per-sink timeout while recording (default 10s).
//   - Logger: optional structured logger used for warnings.
type Config struct {
	SinkTimeout time.Duration
	Logger      *zap.Logger
}

// Recorder fans individual events out to registered sinks. The crawl is
// strictly sequential and emits a handful of events per page, so recording is
// synchronous; a sink failure is logged and never interrupts the crawl.
type Recorder struct {
	cfg    Config
	sinks  []Sink
	logger *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewRecorder initializes a Recorder over the supplied sinks. The returned
// Recorder is immediately ready to accept events.
func NewRecorder(cfg Config, sinks ...Sink) *Recorder {
	if cfg.SinkTimeout <= 0 {
		cfg.SinkTimeout = defaultSinkTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		cfg:    cfg,
		sinks:  append([]Sink(nil), sinks...),
		logger: logger,
	}
}

// Emit validates the event and hands it to every sink in registration order.
// Invalid events are discarded with a debug log; sink errors are warned about
// and otherwise ignored so observability never fails a crawl step.
func (r *Recorder) Emit(ctx context.Context, evt Event) {
	if r == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := evt.Validate(); err != nil {
		r.logger.Debug("discarding invalid progress event", zap.Error(err))
		return
	}
	for _, sink := range r.sinks {
		if sink == nil {
			continue
		}
		sinkCtx, cancel := context.WithTimeout(ctx, r.cfg.SinkTimeout)
		if err := sink.Record(sinkCtx, evt); err != nil {
			r.logger.Warn("progress sink record failed",
				zap.String("stage", string(evt.Stage)),
				zap.Error(err))
		}
		cancel()
	}
}

// Close closes every sink. It is safe to call multiple times; only the first
// call reaches the sinks and its result is returned thereafter.
func (r *Recorder) Close(ctx context.Context) error {
	if r == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	r.closeOnce.Do(func() {
		for _, sink := range r.sinks {
			if sink == nil {
				continue
			}
			if err := sink.Close(ctx); err != nil {
				r.logger.Warn("progress sink close failed", zap.Error(err))
				if r.closeErr == nil {
					r.closeErr = err
				}
			}
		}
	})
	return r.closeErr
}
