// Package metrics computes postural sway and stability metrics from a
// completed trial recording: anatomical scale calibration, the smoothed
// center-of-mass trajectory, per-axis sway deviations, path length and
// velocity, balance corrections, arm strategy angles and the composite
// stability score, plus the early/middle/late breakdown.
//
// Everything here is a pure batch pass over recorded frames. Live
// supervision during capture happens in the trial package.
package metrics

import (
	"errors"

	"github.com/steady-data/balance.report/internal/pose"
	"github.com/steady-data/balance.report/internal/units"
)

// ErrNoUsableFrames reports a recording with no frame the engine can
// measure. It is an expected data-quality outcome; callers treat the
// absent result as terminal rather than retrying.
var ErrNoUsableFrames = errors.New("metrics: no usable frames in trial history")

// Result is the complete metrics record for one trial. All values are
// rounded for reporting: centimeters and ratios to two decimals,
// degrees and the score to one.
type Result struct {
	Sway            Sway        `json:"sway"`
	Arms            Arms        `json:"arms"`
	Stability       float64     `json:"stability_score"` // 0-100, higher is steadier
	DurationSeconds float64     `json:"duration_seconds"`
	FrameCount      int         `json:"frame_count"`
	Scale           units.Scale `json:"scale_cm_per_unit"` // cm per normalized unit
	Thirds          Thirds      `json:"thirds"`
}

// Compute runs the batch metrics pass over a completed trial.
func Compute(history *pose.History) (*Result, error) {
	if history == nil || history.Len() == 0 {
		return nil, ErrNoUsableFrames
	}

	frames := history.Frames()
	duration := history.Duration()
	scale := CalibrateScale(frames)

	traj := ExtractTrajectory(frames, scale)
	if len(traj) == 0 {
		return nil, ErrNoUsableFrames
	}

	sway := ComputeSway(traj, duration)
	arms := ComputeArms(frames)
	score := StabilityScore(sway, arms)

	return &Result{
		Sway: Sway{
			StdX:        units.Round2(sway.StdX),
			StdY:        units.Round2(sway.StdY),
			PathLength:  units.Round2(sway.PathLength),
			Velocity:    units.Round2(sway.Velocity),
			Corrections: sway.Corrections,
		},
		Arms: Arms{
			Left:      units.Round1(arms.Left),
			Right:     units.Round1(arms.Right),
			Asymmetry: units.Round2(arms.Asymmetry),
		},
		Stability:       units.Round1(score),
		DurationSeconds: units.Round2(duration.Seconds()),
		FrameCount:      len(frames),
		Scale:           scale,
		Thirds:          computeThirds(frames, scale, duration),
	}, nil
}
