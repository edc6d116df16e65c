// Package trial supervises a live single-leg balance attempt. It
// watches raw landmark frames for stance readiness before the hold and
// for the two failure modes during it: the raised foot touching down
// and the support foot sliding. It keeps O(1) state per frame and never
// computes metrics; the batch pass in the metrics package does that
// after the trial ends.
//
// Readiness and failure checks run on unsmoothed normalized
// coordinates. Smoothing would soften exactly the sharp transients
// these checks exist to catch.
package trial

import (
	"fmt"
	"math"

	"github.com/steady-data/balance.report/internal/pose"
)

// State is the lifecycle position of a trial.
type State string

const (
	StateNotReady  State = "not_ready"
	StateReady     State = "ready"
	StateHolding   State = "holding"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Terminal reports whether the state accepts no further frames.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Reason explains how a trial reached a terminal state.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonTimeComplete     Reason = "time_complete"
	ReasonManualStop       Reason = "manual_stop"
	ReasonFootTouchdown    Reason = "foot_touchdown"
	ReasonSupportFootMoved Reason = "support_foot_moved"
)

// Detection thresholds in normalized image units.
const (
	// RaiseThreshold is how far above the support ankle the raised
	// ankle must sit before the stance counts as ready.
	RaiseThreshold = 0.05

	// ShoulderTiltTolerance is the maximum Y difference between the
	// shoulders for a level stance.
	ShoulderTiltTolerance = 0.04

	// TouchdownThreshold is the ankle Y convergence that suggests the
	// raised foot is back on the ground.
	TouchdownThreshold = 0.05

	// DescentThreshold is how far the raised ankle must drop from its
	// initial hold position before a touchdown can be called. Requiring
	// descent as well as convergence keeps camera bob from ending
	// trials.
	DescentThreshold = 0.05

	// SupportMoveThreshold is the displacement of the support ankle
	// from its initial hold position that fails the trial.
	SupportMoveThreshold = 0.05
)

// Check names.
const (
	CheckRaisedAnkle = "raised_ankle_elevated"
	CheckShoulders   = "shoulders_level"
	CheckTouchdown   = "foot_touchdown"
	CheckSupportFoot = "support_foot_stationary"
)

// Check is the outcome of one readiness or failure test on a frame.
// Skipped means the frame lacked confident landmarks for the test and
// says nothing about the athlete.
type Check struct {
	Name    string
	OK      bool
	Skipped bool
	Detail  string
}

// Reference is the stance snapshot taken when the hold begins. All
// failure checks measure against it.
type Reference struct {
	SupportX float64
	SupportY float64
	RaisedY  float64
}

// Monitor runs the trial state machine for one attempt.
type Monitor struct {
	leg    pose.Leg
	state  State
	reason Reason

	ref     Reference
	haveRef bool

	// stance is the last frame that passed every readiness check,
	// pending promotion to the hold reference by Begin.
	stance     Reference
	haveStance bool
}

// NewMonitor returns a monitor for a trial on the given support leg.
func NewMonitor(leg pose.Leg) *Monitor {
	return &Monitor{leg: leg, state: StateNotReady}
}

// State returns the current trial state.
func (m *Monitor) State() State { return m.state }

// Reason returns why the trial ended, or ReasonNone while it runs.
func (m *Monitor) Reason() Reason { return m.reason }

// Reference returns the hold-start stance once the hold has begun.
func (m *Monitor) Reference() (Reference, bool) {
	return m.ref, m.haveRef
}

// CheckPosition evaluates the readiness tests on a raw frame: the
// raised ankle clearly off the ground and the shoulders level. Details
// on failing checks are written for the athlete.
func CheckPosition(f pose.Frame, leg pose.Leg) []Check {
	checks := make([]Check, 0, 2)

	raised := leg.RaisedAnkle()
	support := leg.SupportAnkle()
	if !f.Norm.Usable(raised, support) {
		checks = append(checks, Check{Name: CheckRaisedAnkle, Skipped: true, Detail: "ankles not visible"})
	} else {
		r, _ := f.Norm.At(raised)
		s, _ := f.Norm.At(support)
		// Y grows downward: a raised ankle has the smaller Y.
		elevated := s.Y-r.Y >= RaiseThreshold
		c := Check{Name: CheckRaisedAnkle, OK: elevated}
		if !elevated {
			c.Detail = fmt.Sprintf("lift your %s foot higher off the ground", leg.Opposite())
		}
		checks = append(checks, c)
	}

	if !f.Norm.Usable(pose.LeftShoulder, pose.RightShoulder) {
		checks = append(checks, Check{Name: CheckShoulders, Skipped: true, Detail: "shoulders not visible"})
	} else {
		l, _ := f.Norm.At(pose.LeftShoulder)
		r, _ := f.Norm.At(pose.RightShoulder)
		level := math.Abs(l.Y-r.Y) <= ShoulderTiltTolerance
		c := Check{Name: CheckShoulders, OK: level}
		if !level {
			c.Detail = "stand up straight and keep your shoulders level"
		}
		checks = append(checks, c)
	}

	return checks
}

// ProcessFrame advances the state machine with one raw frame and
// returns the checks evaluated on it. Terminal states ignore frames.
func (m *Monitor) ProcessFrame(f pose.Frame) []Check {
	switch m.state {
	case StateNotReady, StateReady:
		return m.assess(f)
	case StateHolding:
		return m.watch(f)
	default:
		return nil
	}
}

// assess runs readiness checks and moves between NotReady and Ready.
func (m *Monitor) assess(f pose.Frame) []Check {
	checks := CheckPosition(f, m.leg)

	ready := true
	for _, c := range checks {
		if c.Skipped {
			// Occluded frames say nothing; hold the current state.
			return checks
		}
		if !c.OK {
			ready = false
		}
	}
	if !ready {
		m.state = StateNotReady
		return checks
	}

	m.state = StateReady
	r, _ := f.Norm.At(m.leg.RaisedAnkle())
	s, _ := f.Norm.At(m.leg.SupportAnkle())
	m.stance = Reference{SupportX: s.X, SupportY: s.Y, RaisedY: r.Y}
	m.haveStance = true
	return checks
}

// watch runs the failure checks against the hold reference.
func (m *Monitor) watch(f pose.Frame) []Check {
	checks := []Check{
		m.checkTouchdown(f),
		m.checkSupportFoot(f),
	}
	for _, c := range checks {
		if !c.Skipped && !c.OK {
			m.state = StateFailed
			break
		}
	}
	return checks
}

func (m *Monitor) checkTouchdown(f pose.Frame) Check {
	raised := m.leg.RaisedAnkle()
	support := m.leg.SupportAnkle()
	if !f.Norm.Usable(raised, support) {
		return Check{Name: CheckTouchdown, Skipped: true, Detail: "ankles not visible"}
	}

	r, _ := f.Norm.At(raised)
	s, _ := f.Norm.At(support)
	converged := math.Abs(r.Y-s.Y) < TouchdownThreshold
	descended := r.Y-m.ref.RaisedY > DescentThreshold
	if converged && descended {
		m.reason = ReasonFootTouchdown
		return Check{Name: CheckTouchdown, Detail: "raised foot touched the ground"}
	}
	return Check{Name: CheckTouchdown, OK: true}
}

func (m *Monitor) checkSupportFoot(f pose.Frame) Check {
	support := m.leg.SupportAnkle()
	if !f.Norm.Usable(support) {
		return Check{Name: CheckSupportFoot, Skipped: true, Detail: "support ankle not visible"}
	}

	s, _ := f.Norm.At(support)
	moved := math.Hypot(s.X-m.ref.SupportX, s.Y-m.ref.SupportY)
	if moved > SupportMoveThreshold {
		m.reason = ReasonSupportFootMoved
		return Check{Name: CheckSupportFoot, Detail: "support foot moved from its starting spot"}
	}
	return Check{Name: CheckSupportFoot, OK: true}
}

// Begin starts the hold. The capture controller calls this when its
// countdown ends; the last stance that passed readiness becomes the
// failure-check reference.
func (m *Monitor) Begin() error {
	if m.state != StateReady {
		return fmt.Errorf("cannot begin hold from state %q", m.state)
	}
	if !m.haveStance {
		return fmt.Errorf("no readiness stance recorded")
	}
	m.ref = m.stance
	m.haveRef = true
	m.state = StateHolding
	return nil
}

// Stop ends the hold from outside: the nominal duration elapsed or an
// operator stopped the trial. Both are completions, not failures.
func (m *Monitor) Stop(reason Reason) error {
	if m.state != StateHolding {
		return fmt.Errorf("cannot stop trial from state %q", m.state)
	}
	if reason != ReasonTimeComplete && reason != ReasonManualStop {
		return fmt.Errorf("invalid stop reason %q", reason)
	}
	m.state = StateCompleted
	m.reason = reason
	return nil
}
