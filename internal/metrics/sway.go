package metrics

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/steady-data/balance.report/internal/filter"
)

// CorrectionThresholdCM is the radial displacement past which the
// subject is considered to be making a balance correction.
const CorrectionThresholdCM = 2.0

// Sway quantifies center-of-mass movement over a trial. Lengths are in
// centimeters, velocity in cm/s.
type Sway struct {
	StdX        float64 `json:"std_x"`
	StdY        float64 `json:"std_y"`
	PathLength  float64 `json:"path_length"`
	Velocity    float64 `json:"velocity"`
	Corrections int     `json:"corrections"`
}

// ComputeSway measures postural sway over a displacement trajectory.
// Deviations use the population standard deviation. Fewer than two
// points yield a zero-valued result.
func ComputeSway(traj []filter.Point, duration time.Duration) Sway {
	if len(traj) < 2 {
		return Sway{}
	}

	xs := make([]float64, len(traj))
	ys := make([]float64, len(traj))
	for i, p := range traj {
		xs[i] = p.X
		ys[i] = p.Y
	}

	var path float64
	for i := 1; i < len(traj); i++ {
		path += math.Hypot(traj[i].X-traj[i-1].X, traj[i].Y-traj[i-1].Y)
	}

	var velocity float64
	if secs := duration.Seconds(); secs > 0 {
		velocity = path / secs
	}

	return Sway{
		StdX:        stat.PopStdDev(xs, nil),
		StdY:        stat.PopStdDev(ys, nil),
		PathLength:  path,
		Velocity:    velocity,
		Corrections: countCorrections(traj),
	}
}

// countCorrections counts completed excursion-and-return cycles of the
// radial displacement. Leaving the threshold and staying out is not a
// correction; a new excursion requires having come back inside first.
func countCorrections(traj []filter.Point) int {
	count := 0
	outside := false
	for _, p := range traj {
		r := math.Hypot(p.X, p.Y)
		switch {
		case r > CorrectionThresholdCM:
			outside = true
		case outside:
			count++
			outside = false
		}
	}
	return count
}
