package sinks

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JakeFAU/jarchive-crawler/internal/progress"
)

// PrometheusSink exports crawler progress metrics via Prometheus. It owns all
// collectors for runs started/completed/in-progress, episode outcomes, clue
// upserts, exports, and fetch counters.
type PrometheusSink struct {
	runsStarted   prometheus.Counter
	runsCompleted *prometheus.CounterVec
	runsActive    prometheus.Gauge
	runDuration   *prometheus.HistogramVec

	episodes        *prometheus.CounterVec
	episodeDuration prometheus.Histogram
	cluesUpserted   prometheus.Counter
	exports         prometheus.Counter

	fetchRequests *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec

	tracker *runTracker
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jarchive_runs_started_total",
			Help: "Total crawl steps that have started.",
		}),
		runsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jarchive_runs_completed_total",
			Help: "Total crawl steps completed partitioned by result.",
		}, []string{"result"}),
		runsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jarchive_runs_in_progress",
			Help: "Current number of in-flight crawl steps.",
		}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jarchive_run_duration_seconds",
			Help:    "Wall time per completed crawl step.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"result"}),
		episodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jarchive_episodes_total",
			Help: "Episodes processed partitioned by result.",
		}, []string{"result"}),
		episodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jarchive_episode_duration_seconds",
			Help:    "Wall time per scraped episode, including the courtesy delay.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		cluesUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jarchive_clues_upserted_total",
			Help: "Total clue rows written to the archive store.",
		}),
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jarchive_exports_total",
			Help: "Total export artifact refreshes.",
		}),
		fetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jarchive_fetch_requests_total",
			Help: "Fetch completions partitioned by status class and cache outcome.",
		}, []string{"status_class", "cache"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jarchive_fetch_duration_seconds",
			Help:    "Network fetch duration partitioned by status class.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}, []string{"status_class"}),
		tracker: newRunTracker(),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsCompleted,
		s.runsActive,
		s.runDuration,
		s.episodes,
		s.episodeDuration,
		s.cluesUpserted,
		s.exports,
		s.fetchRequests,
		s.fetchDuration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Record updates the Prometheus collectors using the provided event. It is
// safe for concurrent use by multiple goroutines.
func (s *PrometheusSink) Record(_ context.Context, evt progress.Event) error {
	switch evt.Stage {
	case progress.StageRunStart, progress.StageRunDone, progress.StageRunError:
		s.handleRunEvent(evt)
	case progress.StageEpisodeDone, progress.StageEpisodeSkip:
		s.handleEpisodeEvent(evt)
	case progress.StageFetchDone:
		s.handleFetchEvent(evt)
	case progress.StageExportDone:
		s.exports.Inc()
	}
	return nil
}

func (s *PrometheusSink) handleRunEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageRunStart:
		s.runsStarted.Inc()
		if s.tracker.start(evt.RunID) {
			s.runsActive.Inc()
		}
	case progress.StageRunDone:
		s.runsCompleted.WithLabelValues("success").Inc()
		s.observeRunDuration(evt, "success")
	case progress.StageRunError:
		s.runsCompleted.WithLabelValues("error").Inc()
		s.observeRunDuration(evt, "error")
	}
	if evt.Stage != progress.StageRunStart && s.tracker.complete(evt.RunID) {
		s.runsActive.Dec()
	}
}

func (s *PrometheusSink) observeRunDuration(evt progress.Event, label string) {
	if evt.Dur > 0 {
		s.runDuration.WithLabelValues(label).Observe(evt.Dur.Seconds())
	}
}

func (s *PrometheusSink) handleEpisodeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageEpisodeDone:
		s.episodes.WithLabelValues("scraped").Inc()
		if evt.Clues > 0 {
			s.cluesUpserted.Add(float64(evt.Clues))
		}
		if evt.Dur > 0 {
			s.episodeDuration.Observe(evt.Dur.Seconds())
		}
	case progress.StageEpisodeSkip:
		s.episodes.WithLabelValues("skipped").Inc()
	}
}

func (s *PrometheusSink) handleFetchEvent(evt progress.Event) {
	statusClass := string(evt.StatusClass)
	if statusClass == "" {
		statusClass = string(progress.StatusOther)
	}
	cache := "miss"
	if evt.CacheHit {
		cache = "hit"
	}
	s.fetchRequests.WithLabelValues(statusClass, cache).Inc()
	if !evt.CacheHit && evt.Dur > 0 {
		s.fetchDuration.WithLabelValues(statusClass).Observe(evt.Dur.Seconds())
	}
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}

type runTracker struct {
	mu      sync.Mutex
	running map[uuid.UUID]struct{}
}

func newRunTracker() *runTracker {
	return &runTracker{running: make(map[uuid.UUID]struct{})}
}

func (t *runTracker) start(id uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; ok {
		return false
	}
	t.running[id] = struct{}{}
	return true
}

func (t *runTracker) complete(id uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; !ok {
		return false
	}
	delete(t.running, id)
	return true
}
