package metrics

import "math"

// Reference maxima for score normalization. Each component is divided
// by its maximum and clamped to 1 before weighting, so performances at
// or beyond these bounds floor the component.
const (
	maxSwayStdCM       = 8.0  // cm, combined axis deviation
	maxSwayVelocityCMS = 5.0  // cm/s
	maxArmAngleDeg     = 45.0 // degrees, mean absolute deviation
	maxCorrections     = 15.0
)

// Component weights. Sway velocity carries the most signal for
// postural control quality.
const (
	weightSwayStd     = 0.25
	weightVelocity    = 0.30
	weightArm         = 0.25
	weightCorrections = 0.20
)

// StabilityScore folds sway and arm metrics into a composite 0-100
// score, higher is steadier.
func StabilityScore(sway Sway, arms Arms) float64 {
	combinedStd := (sway.StdX + sway.StdY) / 2
	armMean := (math.Abs(arms.Left) + math.Abs(arms.Right)) / 2

	weighted := weightSwayStd*clamp01(combinedStd/maxSwayStdCM) +
		weightVelocity*clamp01(sway.Velocity/maxSwayVelocityCMS) +
		weightArm*clamp01(armMean/maxArmAngleDeg) +
		weightCorrections*clamp01(float64(sway.Corrections)/maxCorrections)

	score := (1 - weighted) * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
