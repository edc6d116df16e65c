package metrics

import (
	"time"

	"github.com/steady-data/balance.report/internal/pose"
	"github.com/steady-data/balance.report/internal/units"
)

// Segment holds the per-third measurements used to show drift across
// the hold. Angles in degrees, velocity in cm/s, already rounded.
type Segment struct {
	ArmLeft      float64 `json:"arm_left"`
	ArmRight     float64 `json:"arm_right"`
	SwayVelocity float64 `json:"sway_velocity"`
	Corrections  int     `json:"corrections"`
}

// Thirds splits a trial into three consecutive segments of equal frame
// count. Fatigue typically shows as the Late segment degrading relative
// to Early.
type Thirds struct {
	Early  Segment `json:"early"`
	Middle Segment `json:"middle"`
	Late   Segment `json:"late"`
}

// computeThirds measures each third with the shared calibration scale.
// The frame count divides by three with any remainder going to the last
// segment; each segment is assigned a third of the total duration.
func computeThirds(frames []pose.Frame, scale units.Scale, total time.Duration) Thirds {
	third := len(frames) / 3
	segDur := total / 3
	parts := [3][]pose.Frame{
		frames[:third],
		frames[third : 2*third],
		frames[2*third:],
	}

	var out [3]Segment
	for i, part := range parts {
		traj := ExtractTrajectory(part, scale)
		sway := ComputeSway(traj, segDur)
		arms := ComputeArms(part)
		out[i] = Segment{
			ArmLeft:      units.Round1(arms.Left),
			ArmRight:     units.Round1(arms.Right),
			SwayVelocity: units.Round2(sway.Velocity),
			Corrections:  sway.Corrections,
		}
	}
	return Thirds{Early: out[0], Middle: out[1], Late: out[2]}
}
