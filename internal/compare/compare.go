// Package compare measures left/right symmetry across a pair of
// single-leg trials. Weighting favors hold duration, the strongest
// signal of a true side difference in young athletes.
package compare

import (
	"math"

	"github.com/steady-data/balance.report/internal/units"
)

const (
	// Holds within 20% of each other count as balanced.
	balancedPctThreshold = 20.0
	// Arm angle difference that maps to zero arm symmetry.
	armDiffMaxDeg = 15.0
	// Correction count difference that maps to zero corrections symmetry.
	correctionsDiffMax = 5.0

	durationWeight    = 0.5
	swayWeight        = 0.3
	armWeight         = 0.1
	correctionsWeight = 0.1
)

// Input is one leg's share of a bilateral comparison, taken from that
// leg's trial metrics.
type Input struct {
	HoldSeconds  float64
	SwayVelocity float64 // cm/s
	ArmLeftDeg   float64
	ArmRightDeg  float64
	Corrections  int
}

// Dominance names which leg carried the better hold.
type Dominance string

const (
	DominanceLeft     Dominance = "left"
	DominanceRight    Dominance = "right"
	DominanceBalanced Dominance = "balanced"
)

// Assessment tiers the overall symmetry score.
type Assessment string

const (
	AssessmentExcellent Assessment = "excellent"
	AssessmentGood      Assessment = "good"
	AssessmentFair      Assessment = "fair"
	AssessmentPoor      Assessment = "poor"
)

// Comparison is the bilateral symmetry report. Differences are rounded
// to one decimal, the sway symmetry ratio to two.
type Comparison struct {
	DurationDiff    float64 // seconds
	DurationDiffPct float64
	DominantLeg     Dominance
	SwayDiff        float64 // cm/s
	SwaySymmetry    float64 // 0 asymmetric, 1 perfect
	ArmAngleDiff    float64 // degrees
	CorrectionsDiff int     // signed, left minus right
	OverallSymmetry float64 // 0-100
	Assessment      Assessment
}

// Compare scores the symmetry between a left-leg and a right-leg trial.
func Compare(left, right Input) Comparison {
	durationDiff := math.Abs(left.HoldSeconds - right.HoldSeconds)
	maxHold := math.Max(left.HoldSeconds, right.HoldSeconds)
	var pct float64
	if maxHold > 0 {
		pct = durationDiff / maxHold * 100
	}

	dominant := DominanceBalanced
	if pct >= balancedPctThreshold {
		if left.HoldSeconds > right.HoldSeconds {
			dominant = DominanceLeft
		} else {
			dominant = DominanceRight
		}
	}

	swayDiff := math.Abs(left.SwayVelocity - right.SwayVelocity)
	avgSway := (left.SwayVelocity + right.SwayVelocity) / 2
	swaySymmetry := 1.0
	if avgSway > 0 {
		swaySymmetry = 1 - math.Min(swayDiff/avgSway, 1)
	}

	leftArms := (left.ArmLeftDeg + left.ArmRightDeg) / 2
	rightArms := (right.ArmLeftDeg + right.ArmRightDeg) / 2
	armDiff := math.Abs(leftArms - rightArms)

	correctionsDiff := left.Corrections - right.Corrections

	durationSym := math.Max(0, 100-pct)
	swaySym := swaySymmetry * 100
	armSym := math.Max(0, 100-armDiff/armDiffMaxDeg*100)
	correctionsSym := math.Max(0, 100-math.Abs(float64(correctionsDiff))/correctionsDiffMax*100)

	overall := durationSym*durationWeight +
		swaySym*swayWeight +
		armSym*armWeight +
		correctionsSym*correctionsWeight
	overall = math.Max(0, math.Min(100, overall))

	return Comparison{
		DurationDiff:    units.Round1(durationDiff),
		DurationDiffPct: units.Round1(pct),
		DominantLeg:     dominant,
		SwayDiff:        units.Round1(swayDiff),
		SwaySymmetry:    units.Round2(swaySymmetry),
		ArmAngleDiff:    units.Round1(armDiff),
		CorrectionsDiff: correctionsDiff,
		OverallSymmetry: units.Round1(overall),
		Assessment:      assess(overall),
	}
}

func assess(overall float64) Assessment {
	switch {
	case overall >= 85:
		return AssessmentExcellent
	case overall >= 70:
		return AssessmentGood
	case overall >= 50:
		return AssessmentFair
	default:
		return AssessmentPoor
	}
}
