package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/steady-data/balance.report/internal/ltad"
	"github.com/steady-data/balance.report/internal/metrics"
	"github.com/steady-data/balance.report/internal/pose"
	"github.com/steady-data/balance.report/internal/session"
)

// TrialReport is the JSON document written next to the keypoints
// archive: identity, outcome, development banding, and the computed
// metrics when the trial produced any.
type TrialReport struct {
	TrialID        string          `json:"trial_id"`
	AthleteRef     string          `json:"athlete_ref"`
	AthleteAge     int             `json:"athlete_age,omitempty"`
	Leg            string          `json:"leg"`
	Status         string          `json:"status"`
	Reason         string          `json:"reason,omitempty"`
	HoldSeconds    float64         `json:"hold_seconds"`
	NominalSeconds float64         `json:"nominal_seconds"`
	RecordedAt     time.Time       `json:"recorded_at"`
	DurationScore  int             `json:"duration_score"`
	DurationLabel  string          `json:"duration_label"`
	Expectation    string          `json:"age_expectation"`
	Metrics        *metrics.Result `json:"metrics,omitempty"`
}

// NewTrialReport assembles the report document for a finished trial.
// res may be nil when no usable frames were recorded.
func NewTrialReport(cfg pose.TrialConfig, out session.Outcome, res *metrics.Result, at time.Time) TrialReport {
	band := ltad.DurationScore(out.HoldSeconds)
	return TrialReport{
		TrialID:        out.TrialID,
		AthleteRef:     cfg.AthleteRef,
		AthleteAge:     cfg.AthleteAge,
		Leg:            string(cfg.LegTested),
		Status:         string(out.Status),
		Reason:         string(out.Reason),
		HoldSeconds:    out.HoldSeconds,
		NominalSeconds: cfg.NominalDuration.Seconds(),
		RecordedAt:     at.UTC(),
		DurationScore:  band.Score,
		DurationLabel:  band.Label,
		Expectation:    string(ltad.AgeExpectation(cfg.AthleteAge, band.Score)),
		Metrics:        res,
	}
}

// WriteTrialJSON writes the report indented for humans.
func WriteTrialJSON(path string, report TrialReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
