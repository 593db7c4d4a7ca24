package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/JakeFAU/jarchive-crawler/internal/crawler"
)

// Recorder is an in-memory Provider for local development and tests. It
// collects every published summary for later inspection.
type Recorder struct {
	mu        sync.Mutex
	summaries []crawler.RunSummary
	closed    bool
}

// NewRecorder constructs an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish stores a copy of the summary, or errors once closed.
func (r *Recorder) Publish(_ context.Context, summary crawler.RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errors.New("notifier closed")
	}
	r.summaries = append(r.summaries, summary)
	return nil
}

// Summaries returns the published summaries in publication order.
func (r *Recorder) Summaries() []crawler.RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]crawler.RunSummary(nil), r.summaries...)
}

// Close marks the recorder closed. Closing twice is safe.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
