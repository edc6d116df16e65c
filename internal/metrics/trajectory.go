package metrics

import (
	"time"

	"github.com/steady-data/balance.report/internal/filter"
	"github.com/steady-data/balance.report/internal/pose"
	"github.com/steady-data/balance.report/internal/units"
)

// ExtractTrajectory reduces a frame sequence to the center-of-mass path
// in centimeters relative to its starting position. The hip midpoint
// stands in for the center of mass; frames missing either hip are
// skipped rather than interpolated. The raw midpoints are smoothed
// before the origin is subtracted.
func ExtractTrajectory(frames []pose.Frame, scale units.Scale) []filter.Point {
	raw := make([]filter.Point, 0, len(frames))
	times := make([]time.Duration, 0, len(frames))
	for _, f := range frames {
		if !f.Norm.Usable(pose.LeftHip, pose.RightHip) {
			continue
		}
		l, _ := f.Norm.At(pose.LeftHip)
		r, _ := f.Norm.At(pose.RightHip)
		raw = append(raw, filter.Point{
			X: (l.X + r.X) / 2,
			Y: (l.Y + r.Y) / 2,
		})
		times = append(times, f.Timestamp)
	}
	if len(raw) == 0 {
		return nil
	}

	smoothed := filter.SmoothPath(raw, times)
	origin := smoothed[0]
	out := make([]filter.Point, len(smoothed))
	for i, p := range smoothed {
		out[i] = filter.Point{
			X: scale.CM(p.X - origin.X),
			Y: scale.CM(p.Y - origin.Y),
		}
	}
	return out
}
