package metrics

import (
	"math"

	"github.com/steady-data/balance.report/internal/pose"
)

// ArmAngle returns the elevation of a wrist relative to its shoulder in
// degrees, measured on world coordinates. World Y grows downward, so an
// arm hanging at the side reads near +90, a T-pose reads near 0 and a
// raised arm reads negative.
func ArmAngle(shoulder, wrist pose.Landmark) float64 {
	dy := wrist.Y - shoulder.Y
	dx := math.Abs(wrist.X - shoulder.X)
	return math.Atan2(dy, dx) * 180 / math.Pi
}

// Arms summarizes arm posture over a trial. Angles are per-side means
// in degrees. Asymmetry is |Left| / |Right|, defined as 1.0 when the
// right arm averages flat.
type Arms struct {
	Left      float64 `json:"left"`
	Right     float64 `json:"right"`
	Asymmetry float64 `json:"asymmetry"`
}

// ComputeArms averages each arm's angle over the frames where that
// side's shoulder and wrist are both usable. Sides are independent; a
// frame can contribute to one arm and not the other.
func ComputeArms(frames []pose.Frame) Arms {
	var sumL, sumR float64
	var nL, nR int
	for _, f := range frames {
		if f.World.Usable(pose.LeftShoulder, pose.LeftWrist) {
			s, _ := f.World.At(pose.LeftShoulder)
			w, _ := f.World.At(pose.LeftWrist)
			sumL += ArmAngle(s, w)
			nL++
		}
		if f.World.Usable(pose.RightShoulder, pose.RightWrist) {
			s, _ := f.World.At(pose.RightShoulder)
			w, _ := f.World.At(pose.RightWrist)
			sumR += ArmAngle(s, w)
			nR++
		}
	}

	var arms Arms
	if nL > 0 {
		arms.Left = sumL / float64(nL)
	}
	if nR > 0 {
		arms.Right = sumR / float64(nR)
	}
	arms.Asymmetry = 1.0
	if r := math.Abs(arms.Right); r > 0 {
		arms.Asymmetry = math.Abs(arms.Left) / r
	}
	return arms
}
