package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steady-data/balance.report/internal/metrics"
	"github.com/steady-data/balance.report/internal/pose"
	"github.com/steady-data/balance.report/internal/session"
	"github.com/steady-data/balance.report/internal/trial"
	"github.com/steady-data/balance.report/internal/units"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "trials.db")
	s, err := Open(dbPath, "migrations")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(id, ref string, at time.Time) *TrialRecord {
	return &TrialRecord{
		ID:             id,
		AthleteRef:     ref,
		AthleteAge:     9,
		Leg:            "left",
		Status:         "completed",
		Reason:         "time_complete",
		HoldSeconds:    20.03,
		NominalSeconds: 20,
		RecordedAt:     at,

		HasMetrics:      true,
		SwayStdX:        1.23,
		SwayStdY:        0.87,
		PathLengthCM:    41.5,
		VelocityCMS:     2.08,
		Corrections:     3,
		ArmLeftDeg:      12.4,
		ArmRightDeg:     15.1,
		ArmAsymmetry:    0.82,
		Stability:       71.5,
		DurationSeconds: 19.97,
		FrameCount:      600,
		ScaleCMPerUnit:  160,

		Early:  PhaseRecord{ArmLeftDeg: 10.1, ArmRightDeg: 12.0, VelocityCMS: 1.9, Corrections: 0},
		Middle: PhaseRecord{ArmLeftDeg: 12.5, ArmRightDeg: 15.2, VelocityCMS: 2.1, Corrections: 1},
		Late:   PhaseRecord{ArmLeftDeg: 14.6, ArmRightDeg: 18.1, VelocityCMS: 2.3, Corrections: 2},
	}
}

func TestSaveAndLoadTrial(t *testing.T) {
	s := openTestStore(t)

	want := sampleRecord("trial_a1", "athlete_7", time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, s.SaveTrial(want))

	got, err := s.TrialByID("trial_a1")
	require.NoError(t, err)

	// Timestamps round-trip through fractional unix seconds, so allow
	// sub-millisecond drift before comparing the rest exactly.
	require.WithinDuration(t, want.RecordedAt, got.RecordedAt, time.Millisecond)
	got.RecordedAt = want.RecordedAt
	assert.Equal(t, want, got)
}

func TestTrialByIDNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.TrialByID("trial_missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSaveTrialValidation(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	rec := sampleRecord("", "athlete_7", now)
	assert.Error(t, s.SaveTrial(rec))

	rec = sampleRecord("trial_a1", "", now)
	assert.Error(t, s.SaveTrial(rec))
}

func TestSaveTrialDuplicateID(t *testing.T) {
	s := openTestStore(t)

	rec := sampleRecord("trial_a1", "athlete_7", time.Now())
	require.NoError(t, s.SaveTrial(rec))
	assert.Error(t, s.SaveTrial(rec))
}

func TestTrialsForAthleteChronological(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	// Inserted out of order on purpose.
	require.NoError(t, s.SaveTrial(sampleRecord("trial_c", "athlete_7", base.Add(48*time.Hour))))
	require.NoError(t, s.SaveTrial(sampleRecord("trial_a", "athlete_7", base)))
	require.NoError(t, s.SaveTrial(sampleRecord("trial_b", "athlete_7", base.Add(24*time.Hour))))
	require.NoError(t, s.SaveTrial(sampleRecord("trial_x", "athlete_8", base.Add(time.Hour))))

	records, err := s.TrialsForAthlete("athlete_7")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "trial_a", records[0].ID)
	assert.Equal(t, "trial_b", records[1].ID)
	assert.Equal(t, "trial_c", records[2].ID)

	records, err = s.TrialsForAthlete("athlete_8")
	require.NoError(t, err)
	require.Len(t, records, 1)

	records, err = s.TrialsForAthlete("athlete_nobody")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNewTrialRecordFlattensMetrics(t *testing.T) {
	cfg := pose.TrialConfig{
		LegTested:       pose.LegRight,
		AthleteRef:      "athlete_12",
		AthleteAge:      11,
		NominalDuration: 20 * time.Second,
	}
	out := session.Outcome{
		TrialID:     "trial_b2",
		Status:      trial.StateFailed,
		Reason:      trial.ReasonFootTouchdown,
		HoldSeconds: 8.43,
	}
	res := &metrics.Result{
		Sway: metrics.Sway{
			StdX:        1.1,
			StdY:        0.9,
			PathLength:  30.25,
			Velocity:    3.59,
			Corrections: 4,
		},
		Arms: metrics.Arms{
			Left:      22.5,
			Right:     31.0,
			Asymmetry: 0.73,
		},
		Stability:       64.2,
		DurationSeconds: 8.43,
		FrameCount:      253,
		Scale:           units.Scale(128),
		Thirds: metrics.Thirds{
			Early: metrics.Segment{ArmLeft: 20.0, ArmRight: 28.5, SwayVelocity: 3.2, Corrections: 1},
			Late:  metrics.Segment{ArmLeft: 25.1, ArmRight: 33.4, SwayVelocity: 4.0, Corrections: 2},
		},
	}

	at := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	rec := NewTrialRecord(cfg, out, res, at)

	assert.Equal(t, "trial_b2", rec.ID)
	assert.Equal(t, "athlete_12", rec.AthleteRef)
	assert.Equal(t, 11, rec.AthleteAge)
	assert.Equal(t, "right", rec.Leg)
	assert.Equal(t, "failed", rec.Status)
	assert.Equal(t, "foot_touchdown", rec.Reason)
	assert.Equal(t, 8.43, rec.HoldSeconds)
	assert.Equal(t, 20.0, rec.NominalSeconds)
	assert.Equal(t, at, rec.RecordedAt)

	assert.True(t, rec.HasMetrics)
	assert.Equal(t, 1.1, rec.SwayStdX)
	assert.Equal(t, 30.25, rec.PathLengthCM)
	assert.Equal(t, 4, rec.Corrections)
	assert.Equal(t, 31.0, rec.ArmRightDeg)
	assert.Equal(t, 64.2, rec.Stability)
	assert.Equal(t, 253, rec.FrameCount)
	assert.Equal(t, 128.0, rec.ScaleCMPerUnit)
	assert.Equal(t, PhaseRecord{ArmLeftDeg: 20.0, ArmRightDeg: 28.5, VelocityCMS: 3.2, Corrections: 1}, rec.Early)
	assert.Equal(t, PhaseRecord{}, rec.Middle)
	assert.Equal(t, PhaseRecord{ArmLeftDeg: 25.1, ArmRightDeg: 33.4, VelocityCMS: 4.0, Corrections: 2}, rec.Late)
}

func TestNewTrialRecordWithoutMetrics(t *testing.T) {
	s := openTestStore(t)

	cfg := pose.DefaultTrialConfig()
	cfg.AthleteRef = "athlete_3"
	out := session.Outcome{
		TrialID:     "trial_c3",
		Status:      trial.StateCompleted,
		Reason:      trial.ReasonTimeComplete,
		HoldSeconds: 20.01,
	}

	rec := NewTrialRecord(cfg, out, nil, time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC))
	assert.False(t, rec.HasMetrics)
	assert.Zero(t, rec.Stability)
	assert.Zero(t, rec.FrameCount)

	require.NoError(t, s.SaveTrial(rec))
	got, err := s.TrialByID("trial_c3")
	require.NoError(t, err)
	assert.False(t, got.HasMetrics)
	assert.Zero(t, got.SwayStdX)
	assert.Equal(t, "completed", got.Status)
}

func TestMigrationLifecycle(t *testing.T) {
	s := openTestStore(t)

	latest, err := LatestMigrationVersion("migrations")
	require.NoError(t, err)
	require.GreaterOrEqual(t, latest, uint(2))

	version, dirty, err := s.MigrateVersion("migrations")
	require.NoError(t, err)
	assert.Equal(t, latest, version)
	assert.False(t, dirty)

	require.NoError(t, s.MigrateDown("migrations"))
	version, _, err = s.MigrateVersion("migrations")
	require.NoError(t, err)
	assert.Equal(t, latest-1, version)

	require.NoError(t, s.MigrateUp("migrations"))
	version, _, err = s.MigrateVersion("migrations")
	require.NoError(t, err)
	assert.Equal(t, latest, version)
}

func TestBackup(t *testing.T) {
	s := openTestStore(t)
	rec := sampleRecord("trial_a1", "athlete_7", time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, s.SaveTrial(rec))

	backupPath := filepath.Join(t.TempDir(), "backup.db")
	require.NoError(t, s.Backup(backupPath))

	restored, err := Open(backupPath, "migrations")
	require.NoError(t, err)
	defer restored.Close()

	got, err := restored.TrialByID("trial_a1")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Stability, got.Stability)
}
