// Package units converts normalized image coordinates to centimeters
// and fixes the reporting precision of derived quantities.
package units

import "math"

// Calibration constants.
const (
	// ShoulderWidthCM is the population-average biacromial width for
	// the child athlete cohort, used as the anatomical ruler.
	ShoulderWidthCM = 32.0

	// FallbackFrameCM is the assumed horizontal scene width when no
	// usable shoulder measurement exists in the calibration window.
	FallbackFrameCM = 150.0

	// Plausibility bounds for a normalized shoulder width. Values
	// outside these are estimator glitches, not anatomy.
	MinShoulderWidthNorm = 0.05
	MaxShoulderWidthNorm = 0.8
)

// Scale converts normalized image units to centimeters.
type Scale float64

// FallbackScale applies when calibration cannot measure the shoulders.
const FallbackScale = Scale(FallbackFrameCM)

// ScaleFromShoulderWidth derives a scale from a measured normalized
// shoulder width. Callers check plausibility first.
func ScaleFromShoulderWidth(widthNorm float64) Scale {
	return Scale(ShoulderWidthCM / widthNorm)
}

// PlausibleShoulderWidth reports whether a normalized width can belong
// to a real pair of shoulders in frame.
func PlausibleShoulderWidth(widthNorm float64) bool {
	return widthNorm > MinShoulderWidthNorm && widthNorm < MaxShoulderWidthNorm
}

// CM converts a normalized length to centimeters.
func (s Scale) CM(v float64) float64 {
	return float64(s) * v
}

// Round2 rounds to two decimals. Centimeter values report at this
// precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to one decimal. Degree values and scores report at this
// precision.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
