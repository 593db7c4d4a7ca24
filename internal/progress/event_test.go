package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func validEvent(stage Stage) Event {
	evt := Event{
		RunID: uuid.New(),
		TS:    time.Now().UTC(),
		Stage: stage,
	}
	switch stage {
	case StageSeasonTarget:
		evt.Season = "31"
	case StageEpisodeDone, StageEpisodeSkip:
		evt.Season = "31"
		evt.Episode = "6895"
	case StageFetchDone:
		evt.URL = "https://example.com/showgame.php?game_id=1"
		evt.StatusClass = Status2xx
	}
	return evt
}

// TestEventValidate exercises the stage-specific field requirements.
func TestEventValidate(t *testing.T) {
	t.Parallel()

	stages := []Stage{
		StageRunStart, StageRunDone, StageRunError, StageSeasonTarget,
		StageFetchDone, StageEpisodeDone, StageEpisodeSkip, StageExportDone,
	}
	for _, stage := range stages {
		require.NoError(t, validEvent(stage).Validate(), "stage %s", stage)
	}

	tests := []struct {
		name    string
		mutate  func(*Event)
		stage   Stage
		wantErr string
	}{
		{
			name:    "missing timestamp",
			stage:   StageRunStart,
			mutate:  func(e *Event) { e.TS = time.Time{} },
			wantErr: "timestamp is required",
		},
		{
			name:    "run event without run id",
			stage:   StageRunDone,
			mutate:  func(e *Event) { e.RunID = uuid.Nil },
			wantErr: "run events require a run id",
		},
		{
			name:    "season target without season",
			stage:   StageSeasonTarget,
			mutate:  func(e *Event) { e.Season = "" },
			wantErr: "season target requires a season",
		},
		{
			name:    "episode event without episode",
			stage:   StageEpisodeDone,
			mutate:  func(e *Event) { e.Episode = "" },
			wantErr: "episode events require season and episode",
		},
		{
			name:    "fetch done without url",
			stage:   StageFetchDone,
			mutate:  func(e *Event) { e.URL = "" },
			wantErr: "fetch done requires a url",
		},
		{
			name:    "fetch done without status class",
			stage:   StageFetchDone,
			mutate:  func(e *Event) { e.StatusClass = "" },
			wantErr: "fetch done requires a status class",
		},
		{
			name:    "unknown stage",
			stage:   Stage("NOT_A_STAGE"),
			mutate:  func(e *Event) {},
			wantErr: "unknown stage",
		},
		{
			name:    "negative duration",
			stage:   StageEpisodeDone,
			mutate:  func(e *Event) { e.Dur = -time.Second },
			wantErr: "duration must be >= 0",
		},
		{
			name:    "negative clue count",
			stage:   StageEpisodeDone,
			mutate:  func(e *Event) { e.Clues = -1 },
			wantErr: "clue count must be >= 0",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			evt := validEvent(tc.stage)
			tc.mutate(&evt)
			err := evt.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

// TestEventValidateFetchWithoutRunID confirms transport-level fetch events are
// accepted even before a run id exists.
func TestEventValidateFetchWithoutRunID(t *testing.T) {
	t.Parallel()

	evt := validEvent(StageFetchDone)
	evt.RunID = uuid.Nil
	require.NoError(t, evt.Validate())
}

// TestClassifyStatus maps representative status codes onto classes.
func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		want StatusClass
	}{
		{200, Status2xx},
		{204, Status2xx},
		{301, Status3xx},
		{404, Status4xx},
		{500, Status5xx},
		{599, Status5xx},
		{0, StatusOther},
		{700, StatusOther},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, ClassifyStatus(tc.code), "code %d", tc.code)
	}
}
