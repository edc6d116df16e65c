// Package pose defines the landmark data model shared by the balance
// engine: per-frame joint positions from an upstream pose estimator,
// the trial frame history, and per-trial configuration.
package pose

// MinVisibility is the estimator confidence floor. Joints below it are
// treated as absent for every check and metric.
const MinVisibility = 0.5

// Landmark is a single joint sample. Coordinates are either normalized
// image space (X, Y in [0,1], Y grows downward) or metric world space,
// depending on which LandmarkSet the point belongs to. Visibility is the
// estimator's confidence in [0,1].
type Landmark struct {
	X          float64
	Y          float64
	Z          float64
	Visibility float64
}

// Visible reports whether the landmark meets the confidence floor.
func (l Landmark) Visible() bool {
	return l.Visibility >= MinVisibility
}

// Joint identifies one of the eight body points the engine consumes.
type Joint int

const (
	LeftShoulder Joint = iota
	RightShoulder
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftAnkle
	RightAnkle

	jointCount
)

var jointNames = [jointCount]string{
	"left_shoulder", "right_shoulder",
	"left_wrist", "right_wrist",
	"left_hip", "right_hip",
	"left_ankle", "right_ankle",
}

func (j Joint) String() string {
	if j < 0 || j >= jointCount {
		return "unknown"
	}
	return jointNames[j]
}

// AllJoints returns the tracked joints in declaration order.
func AllJoints() []Joint {
	js := make([]Joint, jointCount)
	for i := range js {
		js[i] = Joint(i)
	}
	return js
}

// blazePoseIndex maps each tracked joint to its index in the BlazePose
// 33-landmark topology emitted by MediaPipe.
var blazePoseIndex = [jointCount]int{
	11, 12, // shoulders
	15, 16, // wrists
	23, 24, // hips
	27, 28, // ankles
}

// BlazePoseIndex returns the provider landmark index for j.
func (j Joint) BlazePoseIndex() int {
	return blazePoseIndex[j]
}

// JointFromBlazePose maps a BlazePose landmark index to a tracked joint.
// Indices outside the eight tracked points report ok=false.
func JointFromBlazePose(index int) (Joint, bool) {
	for j, idx := range blazePoseIndex {
		if idx == index {
			return Joint(j), true
		}
	}
	return 0, false
}

// LandmarkSet holds one landmark per tracked joint with explicit
// presence. A joint that was never Set is absent, not a zero point.
type LandmarkSet struct {
	marks   [jointCount]Landmark
	present [jointCount]bool
}

// Set stores the landmark for j.
func (s *LandmarkSet) Set(j Joint, lm Landmark) {
	if j < 0 || j >= jointCount {
		return
	}
	s.marks[j] = lm
	s.present[j] = true
}

// At returns the landmark for j and whether it is present.
func (s LandmarkSet) At(j Joint) (Landmark, bool) {
	if j < 0 || j >= jointCount {
		return Landmark{}, false
	}
	return s.marks[j], s.present[j]
}

// Usable reports whether every listed joint is present and meets the
// confidence floor.
func (s LandmarkSet) Usable(joints ...Joint) bool {
	for _, j := range joints {
		lm, ok := s.At(j)
		if !ok || !lm.Visible() {
			return false
		}
	}
	return true
}
