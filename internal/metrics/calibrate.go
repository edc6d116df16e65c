package metrics

import (
	"math"

	"github.com/steady-data/balance.report/internal/pose"
	"github.com/steady-data/balance.report/internal/units"
)

// calibrationWindow is the number of leading frames scanned for a
// usable shoulder measurement.
const calibrationWindow = 10

// CalibrateScale derives the normalized-to-centimeter scale from the
// subject's shoulder width. The first frame in the calibration window
// with both shoulders visible and a plausible width wins. When no frame
// qualifies the fallback scale applies; that is an expected condition
// for short or occluded recordings, not an error.
func CalibrateScale(frames []pose.Frame) units.Scale {
	limit := len(frames)
	if limit > calibrationWindow {
		limit = calibrationWindow
	}
	for _, f := range frames[:limit] {
		if !f.Norm.Usable(pose.LeftShoulder, pose.RightShoulder) {
			continue
		}
		l, _ := f.Norm.At(pose.LeftShoulder)
		r, _ := f.Norm.At(pose.RightShoulder)
		width := math.Hypot(l.X-r.X, l.Y-r.Y)
		if !units.PlausibleShoulderWidth(width) {
			continue
		}
		return units.ScaleFromShoulderWidth(width)
	}
	return units.FallbackScale
}
