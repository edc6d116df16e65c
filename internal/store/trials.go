package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/steady-data/balance.report/internal/metrics"
	"github.com/steady-data/balance.report/internal/pose"
	"github.com/steady-data/balance.report/internal/session"
)

// ErrNotFound is returned when a trial id has no stored row.
var ErrNotFound = errors.New("trial not found")

// TrialRecord is one persisted trial: identity, outcome and the metric
// snapshot flattened into plain columns so reports can query them
// without decoding blobs.
type TrialRecord struct {
	ID             string
	AthleteRef     string
	AthleteAge     int
	Leg            string
	Status         string
	Reason         string
	HoldSeconds    float64
	NominalSeconds float64
	RecordedAt     time.Time

	// HasMetrics is false when the trial ended without usable frames;
	// the metric columns below are zero in that case.
	HasMetrics      bool
	SwayStdX        float64
	SwayStdY        float64
	PathLengthCM    float64
	VelocityCMS     float64
	Corrections     int
	ArmLeftDeg      float64
	ArmRightDeg     float64
	ArmAsymmetry    float64
	Stability       float64
	DurationSeconds float64
	FrameCount      int
	ScaleCMPerUnit  float64

	Early  PhaseRecord
	Middle PhaseRecord
	Late   PhaseRecord
}

// PhaseRecord holds the per-third metrics of a hold.
type PhaseRecord struct {
	ArmLeftDeg  float64
	ArmRightDeg float64
	VelocityCMS float64
	Corrections int
}

// NewTrialRecord flattens a finished trial into its stored form.
// res may be nil when the trial produced no usable frames.
func NewTrialRecord(cfg pose.TrialConfig, out session.Outcome, res *metrics.Result, at time.Time) *TrialRecord {
	rec := &TrialRecord{
		ID:             out.TrialID,
		AthleteRef:     cfg.AthleteRef,
		AthleteAge:     cfg.AthleteAge,
		Leg:            string(cfg.LegTested),
		Status:         string(out.Status),
		Reason:         string(out.Reason),
		HoldSeconds:    out.HoldSeconds,
		NominalSeconds: cfg.NominalDuration.Seconds(),
		RecordedAt:     at,
	}
	if res == nil {
		return rec
	}

	rec.HasMetrics = true
	rec.SwayStdX = res.Sway.StdX
	rec.SwayStdY = res.Sway.StdY
	rec.PathLengthCM = res.Sway.PathLength
	rec.VelocityCMS = res.Sway.Velocity
	rec.Corrections = res.Sway.Corrections
	rec.ArmLeftDeg = res.Arms.Left
	rec.ArmRightDeg = res.Arms.Right
	rec.ArmAsymmetry = res.Arms.Asymmetry
	rec.Stability = res.Stability
	rec.DurationSeconds = res.DurationSeconds
	rec.FrameCount = res.FrameCount
	rec.ScaleCMPerUnit = float64(res.Scale)
	rec.Early = phaseRecord(res.Thirds.Early)
	rec.Middle = phaseRecord(res.Thirds.Middle)
	rec.Late = phaseRecord(res.Thirds.Late)
	return rec
}

func phaseRecord(seg metrics.Segment) PhaseRecord {
	return PhaseRecord{
		ArmLeftDeg:  seg.ArmLeft,
		ArmRightDeg: seg.ArmRight,
		VelocityCMS: seg.SwayVelocity,
		Corrections: seg.Corrections,
	}
}

const trialColumns = `id, athlete_ref, athlete_age, leg, status, reason,
	hold_seconds, nominal_seconds, recorded_at,
	has_metrics, sway_std_x_cm, sway_std_y_cm, path_length_cm, velocity_cm_s,
	corrections, arm_left_deg, arm_right_deg, arm_asymmetry, stability_score,
	duration_seconds, frame_count, scale_cm_per_unit,
	early_arm_left_deg, early_arm_right_deg, early_velocity_cm_s, early_corrections,
	middle_arm_left_deg, middle_arm_right_deg, middle_velocity_cm_s, middle_corrections,
	late_arm_left_deg, late_arm_right_deg, late_velocity_cm_s, late_corrections`

// SaveTrial inserts one trial row.
func (s *Store) SaveTrial(rec *TrialRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("trial record missing id")
	}
	if rec.AthleteRef == "" {
		return fmt.Errorf("trial record missing athlete ref")
	}

	_, err := s.Exec(`INSERT INTO trials (`+trialColumns+`) VALUES
		(?, ?, ?, ?, ?, ?,
		 ?, ?, ?,
		 ?, ?, ?, ?, ?,
		 ?, ?, ?, ?, ?,
		 ?, ?, ?,
		 ?, ?, ?, ?,
		 ?, ?, ?, ?,
		 ?, ?, ?, ?)`,
		rec.ID, rec.AthleteRef, rec.AthleteAge, rec.Leg, rec.Status, rec.Reason,
		rec.HoldSeconds, rec.NominalSeconds, unixSeconds(rec.RecordedAt),
		rec.HasMetrics, rec.SwayStdX, rec.SwayStdY, rec.PathLengthCM, rec.VelocityCMS,
		rec.Corrections, rec.ArmLeftDeg, rec.ArmRightDeg, rec.ArmAsymmetry, rec.Stability,
		rec.DurationSeconds, rec.FrameCount, rec.ScaleCMPerUnit,
		rec.Early.ArmLeftDeg, rec.Early.ArmRightDeg, rec.Early.VelocityCMS, rec.Early.Corrections,
		rec.Middle.ArmLeftDeg, rec.Middle.ArmRightDeg, rec.Middle.VelocityCMS, rec.Middle.Corrections,
		rec.Late.ArmLeftDeg, rec.Late.ArmRightDeg, rec.Late.VelocityCMS, rec.Late.Corrections,
	)
	if err != nil {
		return fmt.Errorf("failed to save trial %s: %w", rec.ID, err)
	}
	return nil
}

// TrialByID loads a single trial row.
func (s *Store) TrialByID(id string) (*TrialRecord, error) {
	row := s.QueryRow(`SELECT `+trialColumns+` FROM trials WHERE id = ?`, id)
	rec, err := scanTrial(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load trial %s: %w", id, err)
	}
	return rec, nil
}

// TrialsForAthlete returns every stored trial for the athlete in
// chronological order.
func (s *Store) TrialsForAthlete(ref string) ([]TrialRecord, error) {
	rows, err := s.Query(`SELECT `+trialColumns+` FROM trials WHERE athlete_ref = ? ORDER BY recorded_at ASC`, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to query trials for %s: %w", ref, err)
	}
	defer rows.Close()

	var records []TrialRecord
	for rows.Next() {
		rec, err := scanTrial(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trial row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trial rows: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrial(row rowScanner) (*TrialRecord, error) {
	var rec TrialRecord
	var recordedAt float64
	err := row.Scan(
		&rec.ID, &rec.AthleteRef, &rec.AthleteAge, &rec.Leg, &rec.Status, &rec.Reason,
		&rec.HoldSeconds, &rec.NominalSeconds, &recordedAt,
		&rec.HasMetrics, &rec.SwayStdX, &rec.SwayStdY, &rec.PathLengthCM, &rec.VelocityCMS,
		&rec.Corrections, &rec.ArmLeftDeg, &rec.ArmRightDeg, &rec.ArmAsymmetry, &rec.Stability,
		&rec.DurationSeconds, &rec.FrameCount, &rec.ScaleCMPerUnit,
		&rec.Early.ArmLeftDeg, &rec.Early.ArmRightDeg, &rec.Early.VelocityCMS, &rec.Early.Corrections,
		&rec.Middle.ArmLeftDeg, &rec.Middle.ArmRightDeg, &rec.Middle.VelocityCMS, &rec.Middle.Corrections,
		&rec.Late.ArmLeftDeg, &rec.Late.ArmRightDeg, &rec.Late.VelocityCMS, &rec.Late.Corrections,
	)
	if err != nil {
		return nil, err
	}
	rec.RecordedAt = timeFromUnix(recordedAt)
	return &rec, nil
}

// Trial timestamps are stored as fractional unix seconds so ordering is
// a plain numeric comparison.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(sec float64) time.Time {
	return time.Unix(0, int64(sec*1e9)).UTC()
}
