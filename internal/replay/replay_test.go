package replay

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steady-data/balance.report/internal/fsutil"
	"github.com/steady-data/balance.report/internal/pose"
	"github.com/steady-data/balance.report/internal/testutil"
	"github.com/steady-data/balance.report/internal/trial"
)

func oneLegFrames(n int, leg pose.Leg) []pose.Frame {
	frames := make([]pose.Frame, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, testutil.OneLegFrame(i, testutil.FrameAt(i), leg))
	}
	return frames
}

func TestRecordingRoundTrip(t *testing.T) {
	cfg := pose.TrialConfig{
		LegTested:       pose.LegRight,
		AthleteRef:      "athlete_014",
		AthleteAge:      11,
		NominalDuration: 20 * time.Second,
	}
	frames := oneLegFrames(2, pose.LegRight)

	// A sparse frame with a single landmark.
	sparse := pose.Frame{Index: 2, Timestamp: testutil.FrameAt(2)}
	sparse.Norm.Set(pose.LeftShoulder, pose.Landmark{X: 0.61, Y: 0.29, Z: -0.1, Visibility: 0.8})
	frames = append(frames, sparse)

	rec := NewRecording(cfg, frames)
	require.Equal(t, FormatVersion, rec.Version)
	require.Len(t, rec.Frames, 3)

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, Save(mfs, "sessions/rec.json", rec))
	require.True(t, mfs.Exists("sessions/rec.json"))

	loaded, err := Load(mfs, "sessions/rec.json")
	require.NoError(t, err)

	if diff := cmp.Diff(rec, loaded); diff != "" {
		t.Errorf("recording mismatch (-want +got):\n%s", diff)
	}

	cfg2, err := loaded.TrialConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, cfg2)

	decoded := loaded.PoseFrames()
	require.Len(t, decoded, 3)
	assert.Equal(t, 2, decoded[2].Index)
	assert.Equal(t, testutil.FrameAt(2), decoded[2].Timestamp)

	lm, ok := decoded[2].Norm.At(pose.LeftShoulder)
	require.True(t, ok)
	assert.Equal(t, pose.Landmark{X: 0.61, Y: 0.29, Z: -0.1, Visibility: 0.8}, lm)

	_, ok = decoded[2].Norm.At(pose.RightShoulder)
	assert.False(t, ok)
}

func TestFrameConversionDropsUnknownJoints(t *testing.T) {
	rf := RecordedFrame{
		Index:     4,
		ElapsedUS: 133332,
		Norm: map[string]RecordedPoint{
			"left_ankle": {X: 0.55, Y: 0.90, Visibility: 0.9},
			"nose":       {X: 0.50, Y: 0.10, Visibility: 0.9},
		},
	}

	f := rf.Frame()
	assert.Equal(t, 4, f.Index)

	_, ok := f.Norm.At(pose.LeftAnkle)
	assert.True(t, ok)

	// The nose is not a tracked joint; only the ankle survives.
	count := 0
	for _, j := range pose.AllJoints() {
		if _, ok := f.Norm.At(j); ok {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestLoadRejectsBadRecordings(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()

	_, err := Load(mfs, "missing.json")
	require.ErrorContains(t, err, "failed to read recording")

	require.NoError(t, mfs.WriteFile("garbage.json", []byte("{nope"), 0644))
	_, err = Load(mfs, "garbage.json")
	require.ErrorContains(t, err, "failed to parse recording")

	require.NoError(t, mfs.WriteFile("version.json", []byte(
		`{"version":99,"config":{"leg":"left","nominal_seconds":20},"frames":[{"index":0,"elapsed_us":0}]}`,
	), 0644))
	_, err = Load(mfs, "version.json")
	require.ErrorContains(t, err, "unsupported recording version")

	require.NoError(t, mfs.WriteFile("empty.json", []byte(
		`{"version":1,"config":{"leg":"left","nominal_seconds":20},"frames":[]}`,
	), 0644))
	_, err = Load(mfs, "empty.json")
	require.ErrorContains(t, err, "no frames")
}

func TestRunCompletesOnTime(t *testing.T) {
	cfg := pose.TrialConfig{
		LegTested:       pose.LegLeft,
		AthleteRef:      "athlete_007",
		NominalDuration: time.Second,
	}
	rec := NewRecording(cfg, oneLegFrames(40, pose.LegLeft))

	res, err := Run(rec)
	require.NoError(t, err)

	assert.Equal(t, trial.StateCompleted, res.Outcome.Status)
	assert.Equal(t, trial.ReasonTimeComplete, res.Outcome.Reason)
	assert.Equal(t, 1.03, res.Outcome.HoldSeconds)

	// Frame 31 is the first at or past the nominal second; it triggers
	// completion and is dropped, so the replay stops there.
	assert.Equal(t, 32, res.FramesRead)
	assert.Len(t, res.HoldFrames, 30)

	require.NotNil(t, res.Metrics)
	assert.Equal(t, 30, res.Metrics.FrameCount)
	assert.Equal(t, 0, res.Metrics.Sway.Corrections)

	require.Len(t, res.Events, 3)
	assert.Equal(t, EventReadinessChanged, res.Events[0].Kind)
	assert.True(t, res.Events[0].Ready)
	assert.Equal(t, time.Duration(0), res.Events[0].Elapsed)
	assert.Equal(t, EventHoldStarted, res.Events[1].Kind)
	assert.Equal(t, EventTrialEnded, res.Events[2].Kind)
	require.NotNil(t, res.Events[2].Outcome)
	assert.Equal(t, res.Outcome, *res.Events[2].Outcome)
}

func TestRunFailsOnTouchdown(t *testing.T) {
	frames := oneLegFrames(10, pose.LegLeft)
	frames = append(frames,
		testutil.StandingFrame(10, testutil.FrameAt(10)),
		testutil.StandingFrame(11, testutil.FrameAt(11)),
	)
	cfg := pose.TrialConfig{
		LegTested:       pose.LegLeft,
		AthleteRef:      "athlete_007",
		NominalDuration: 20 * time.Second,
	}

	res, err := Run(NewRecording(cfg, frames))
	require.NoError(t, err)

	assert.Equal(t, trial.StateFailed, res.Outcome.Status)
	assert.Equal(t, trial.ReasonFootTouchdown, res.Outcome.Reason)
	assert.Equal(t, 0.33, res.Outcome.HoldSeconds)

	// The touchdown frame itself is recorded before the checks run.
	assert.Len(t, res.HoldFrames, 10)
	assert.Equal(t, 11, res.FramesRead)

	require.NotNil(t, res.Metrics)

	last := res.Events[len(res.Events)-1]
	assert.Equal(t, EventTrialEnded, last.Kind)
	assert.Equal(t, testutil.FrameAt(10), last.Elapsed)
}

func TestRunEndOfRecordingStops(t *testing.T) {
	cfg := pose.TrialConfig{
		LegTested:       pose.LegLeft,
		AthleteRef:      "athlete_007",
		NominalDuration: 20 * time.Second,
	}
	rec := NewRecording(cfg, oneLegFrames(30, pose.LegLeft))

	res, err := Run(rec)
	require.NoError(t, err)

	assert.Equal(t, trial.StateCompleted, res.Outcome.Status)
	assert.Equal(t, trial.ReasonManualStop, res.Outcome.Reason)
	assert.Equal(t, 0.97, res.Outcome.HoldSeconds)
	assert.Len(t, res.HoldFrames, 29)
	assert.Equal(t, 30, res.FramesRead)
}

func TestRunNeverReady(t *testing.T) {
	frames := make([]pose.Frame, 0, 5)
	for i := 0; i < 5; i++ {
		frames = append(frames, testutil.StandingFrame(i, testutil.FrameAt(i)))
	}
	cfg := pose.TrialConfig{
		LegTested:       pose.LegLeft,
		AthleteRef:      "athlete_007",
		NominalDuration: 20 * time.Second,
	}

	_, err := Run(NewRecording(cfg, frames))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNeverReady))
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	rec := &Recording{
		Version: FormatVersion,
		Config:  RecordedConfig{Leg: "both", NominalSeconds: 20},
		Frames:  []RecordedFrame{{Index: 0}},
	}

	_, err := Run(rec)
	require.ErrorContains(t, err, "invalid leg")
}
