// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"testing"
	"time"

	"github.com/steady-data/balance.report/internal/pose"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertInDelta checks that got is finite and within tol of want.
func AssertInDelta(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("got non-finite value %v, want %v", got, want)
	}
	if math.Abs(got-want) > tol {
		t.Fatalf("got %v, want %v (tolerance %v)", got, want, tol)
	}
}

// FrameAt returns the trial-relative timestamp of frame i at 30 fps.
func FrameAt(i int) time.Duration {
	return time.Duration(i) * 33333 * time.Microsecond
}

// StandingFrame returns a frame of a subject standing centered and
// facing the camera with every tracked joint visible. Normalized
// shoulders are 0.2 wide around x=0.5, which calibrates to 160 cm per
// normalized unit. World coordinates are metric, hip-centered, arms
// hanging at the sides.
func StandingFrame(index int, at time.Duration) pose.Frame {
	f := pose.Frame{Index: index, Timestamp: at}

	norm := map[pose.Joint]pose.Landmark{
		pose.LeftShoulder:  {X: 0.60, Y: 0.30},
		pose.RightShoulder: {X: 0.40, Y: 0.30},
		pose.LeftWrist:     {X: 0.65, Y: 0.55},
		pose.RightWrist:    {X: 0.35, Y: 0.55},
		pose.LeftHip:       {X: 0.56, Y: 0.55},
		pose.RightHip:      {X: 0.44, Y: 0.55},
		pose.LeftAnkle:     {X: 0.55, Y: 0.90},
		pose.RightAnkle:    {X: 0.45, Y: 0.90},
	}
	world := map[pose.Joint]pose.Landmark{
		pose.LeftShoulder:  {X: 0.18, Y: -0.45},
		pose.RightShoulder: {X: -0.18, Y: -0.45},
		pose.LeftWrist:     {X: 0.22, Y: 0.00},
		pose.RightWrist:    {X: -0.22, Y: 0.00},
		pose.LeftHip:       {X: 0.10, Y: 0.00},
		pose.RightHip:      {X: -0.10, Y: 0.00},
		pose.LeftAnkle:     {X: 0.12, Y: 0.80},
		pose.RightAnkle:    {X: -0.12, Y: 0.80},
	}

	for j, lm := range norm {
		lm.Visibility = 0.95
		f.Norm.Set(j, lm)
	}
	for j, lm := range world {
		lm.Visibility = 0.95
		f.World.Set(j, lm)
	}
	return f
}

// OneLegFrame returns a standing frame with the non-tested ankle lifted
// well past the readiness threshold.
func OneLegFrame(index int, at time.Duration, leg pose.Leg) pose.Frame {
	f := StandingFrame(index, at)
	raised := leg.RaisedAnkle()
	lm, _ := f.Norm.At(raised)
	lm.Y -= 0.10
	f.Norm.Set(raised, lm)
	return f
}
