package pose

import (
	"testing"
	"time"
)

func TestLandmarkSetPresence(t *testing.T) {
	var s LandmarkSet

	if _, ok := s.At(LeftHip); ok {
		t.Error("empty set reported left_hip present")
	}

	s.Set(LeftHip, Landmark{X: 0.4, Y: 0.6, Visibility: 0.9})
	lm, ok := s.At(LeftHip)
	if !ok {
		t.Fatal("left_hip missing after Set")
	}
	if lm.X != 0.4 || lm.Y != 0.6 {
		t.Errorf("left_hip = %+v, want X=0.4 Y=0.6", lm)
	}

	// A zero-valued landmark that was explicitly set is still present.
	s.Set(RightHip, Landmark{})
	if _, ok := s.At(RightHip); !ok {
		t.Error("explicitly set zero landmark reported absent")
	}
}

func TestLandmarkSetUsable(t *testing.T) {
	var s LandmarkSet
	s.Set(LeftShoulder, Landmark{X: 0.3, Y: 0.2, Visibility: 0.9})
	s.Set(RightShoulder, Landmark{X: 0.6, Y: 0.2, Visibility: 0.4})

	if !s.Usable(LeftShoulder) {
		t.Error("confident joint reported unusable")
	}
	if s.Usable(RightShoulder) {
		t.Error("low-confidence joint reported usable")
	}
	if s.Usable(LeftShoulder, RightShoulder) {
		t.Error("pair with one low-confidence joint reported usable")
	}
	if s.Usable(LeftAnkle) {
		t.Error("absent joint reported usable")
	}
}

func TestJointBlazePoseMapping(t *testing.T) {
	for _, j := range AllJoints() {
		idx := j.BlazePoseIndex()
		got, ok := JointFromBlazePose(idx)
		if !ok || got != j {
			t.Errorf("round trip failed for %v: index %d mapped to %v (ok=%v)", j, idx, got, ok)
		}
	}

	if _, ok := JointFromBlazePose(0); ok {
		t.Error("nose index 0 mapped to a tracked joint")
	}
	if _, ok := JointFromBlazePose(32); ok {
		t.Error("foot index 32 mapped to a tracked joint")
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory()
	if h.Len() != 0 || h.Duration() != 0 {
		t.Fatalf("fresh history not empty: len=%d duration=%v", h.Len(), h.Duration())
	}

	h.Append(Frame{Index: 0, Timestamp: 0})
	if h.Duration() != 0 {
		t.Errorf("single-frame duration = %v, want 0", h.Duration())
	}

	h.Append(Frame{Index: 1, Timestamp: 33 * time.Millisecond})
	h.Append(Frame{Index: 2, Timestamp: 66 * time.Millisecond})

	if h.Len() != 3 {
		t.Errorf("Len = %d, want 3", h.Len())
	}
	if got := h.Duration(); got != 66*time.Millisecond {
		t.Errorf("Duration = %v, want 66ms", got)
	}

	frames := h.Frames()
	frames[0].Index = 99
	if h.Frames()[0].Index != 0 {
		t.Error("Frames returned shared backing storage")
	}
}

func TestLegAnkles(t *testing.T) {
	if LegLeft.SupportAnkle() != LeftAnkle || LegLeft.RaisedAnkle() != RightAnkle {
		t.Error("left leg ankle mapping wrong")
	}
	if LegRight.SupportAnkle() != RightAnkle || LegRight.RaisedAnkle() != LeftAnkle {
		t.Error("right leg ankle mapping wrong")
	}
}

func TestTrialConfigValidate(t *testing.T) {
	cfg := DefaultTrialConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	cfg.LegTested = Leg("both")
	if err := cfg.Validate(); err == nil {
		t.Error("invalid leg accepted")
	}

	cfg = DefaultTrialConfig()
	cfg.NominalDuration = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero duration accepted")
	}
}
