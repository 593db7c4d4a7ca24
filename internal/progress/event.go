package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart     Stage = "RUN_START"
	StageRunDone      Stage = "RUN_DONE"
	StageRunError     Stage = "RUN_ERROR"
	StageSeasonTarget Stage = "SEASON_TARGET"
	StageFetchDone    Stage = "FETCH_DONE"
	StageEpisodeDone  Stage = "EPISODE_DONE"
	StageEpisodeSkip  Stage = "EPISODE_SKIP"
	StageExportDone   Stage = "EXPORT_DONE"
)

// StatusClass is a coarse HTTP response grouping.
type StatusClass string

// Supported HTTP status classes tracked for fetch completions.
const (
	Status2xx   StatusClass = "2xx"
	Status3xx   StatusClass = "3xx"
	Status4xx   StatusClass = "4xx"
	Status5xx   StatusClass = "5xx"
	StatusOther StatusClass = "other"
)

// Event captures a single milestone of crawler progress.
type Event struct {
	// RunID identifies the crawl step that emitted the event. Fetch events
	// come from the transport layer and may leave it unset.
	RunID uuid.UUID
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which lifecycle, episode, or fetch milestone occurred.
	Stage Stage
	// Season optionally scopes the event to a season token.
	Season string
	// Episode optionally scopes the event to an episode number.
	Episode string
	// URL is the optional page URL behind the event.
	URL string
	// Clues carries how many clue rows the milestone upserted.
	Clues int64
	// CacheHit reports whether a fetch was served from the page cache.
	CacheHit bool
	// StatusClass groups HTTP response codes (2xx, 3xx, etc).
	StatusClass StatusClass
	// Dur captures execution latency for fetches, episodes, and runs.
	Dur time.Duration
	// Note lets emitters attach low-volume context (e.g. a skip reason).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone, StageRunError, StageExportDone:
		if e.RunID == uuid.Nil {
			return errors.New("run events require a run id")
		}
	case StageSeasonTarget:
		if e.Season == "" {
			return errors.New("season target requires a season")
		}
	case StageEpisodeDone, StageEpisodeSkip:
		if e.Season == "" || e.Episode == "" {
			return errors.New("episode events require season and episode")
		}
	case StageFetchDone:
		if e.URL == "" {
			return errors.New("fetch done requires a url")
		}
		if e.StatusClass == "" {
			return errors.New("fetch done requires a status class")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	if e.Clues < 0 {
		return errors.New("clue count must be >= 0")
	}
	return nil
}

// ClassifyStatus groups HTTP status codes for fetch events.
func ClassifyStatus(code int) StatusClass {
	switch {
	case code >= 200 && code < 300:
		return Status2xx
	case code >= 300 && code < 400:
		return Status3xx
	case code >= 400 && code < 500:
		return Status4xx
	case code >= 500 && code < 600:
		return Status5xx
	default:
		return StatusOther
	}
}
