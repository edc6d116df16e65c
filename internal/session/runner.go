// Package session runs one balance trial end to end. A Runner owns the
// frame history and the trial monitor, stamps the trial with an ID,
// times the hold against the nominal duration and hands the recording
// to the metrics engine once the trial reaches a terminal state.
//
// The Runner is single-goroutine: the capture loop that delivers frames
// also receives the listener callbacks.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/steady-data/balance.report/internal/metrics"
	"github.com/steady-data/balance.report/internal/monitoring"
	"github.com/steady-data/balance.report/internal/pose"
	"github.com/steady-data/balance.report/internal/timeutil"
	"github.com/steady-data/balance.report/internal/trial"
	"github.com/steady-data/balance.report/internal/units"
)

// Listener receives live trial events. Callbacks run on the
// frame-delivery goroutine and must return quickly.
type Listener interface {
	// ReadinessChanged fires when the stance readiness flips, with the
	// checks from the frame that flipped it.
	ReadinessChanged(ready bool, checks []trial.Check)

	// HoldStarted fires when the hold begins.
	HoldStarted()

	// TrialEnded fires once, when the trial reaches a terminal state.
	TrialEnded(outcome Outcome)
}

// Outcome summarizes how a trial ended.
type Outcome struct {
	TrialID     string
	Status      trial.State
	Reason      trial.Reason
	HoldSeconds float64
}

// ErrTrialRunning is returned by Finish while the trial has not reached
// a terminal state.
var ErrTrialRunning = errors.New("session: trial still in progress")

// Runner drives a single trial.
type Runner struct {
	id       string
	cfg      pose.TrialConfig
	clock    timeutil.Clock
	listener Listener

	history *pose.History
	monitor *trial.Monitor

	holdStart time.Time
	holding   bool
	done      bool
	outcome   Outcome

	readiness      bool
	readinessKnown bool
}

// NewRunner prepares a trial for the given config. A nil clock means
// wall time; a nil listener means no live events.
func NewRunner(cfg pose.TrialConfig, clock timeutil.Clock, listener Listener) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Runner{
		id:       fmt.Sprintf("trial_%s", uuid.NewString()),
		cfg:      cfg,
		clock:    clock,
		listener: listener,
		history:  pose.NewHistory(),
		monitor:  trial.NewMonitor(cfg.LegTested),
	}, nil
}

// ID returns the generated trial identifier.
func (r *Runner) ID() string { return r.id }

// Config returns the trial configuration.
func (r *Runner) Config() pose.TrialConfig { return r.cfg }

// State returns the current trial state.
func (r *Runner) State() trial.State { return r.monitor.State() }

// Done reports whether the trial has ended.
func (r *Runner) Done() bool { return r.done }

// History exposes the recorded hold frames.
func (r *Runner) History() *pose.History { return r.history }

// HoldElapsed returns how long the hold has been running, zero before
// it starts.
func (r *Runner) HoldElapsed() time.Duration {
	if !r.holding {
		return 0
	}
	return r.clock.Since(r.holdStart)
}

// HandleFrame ingests one pose frame and returns the checks evaluated
// on it. Frames arriving after the trial ended are dropped. Only hold
// frames are recorded; readiness frames inform the state machine but do
// not land in the metrics history.
func (r *Runner) HandleFrame(f pose.Frame) []trial.Check {
	if r.done {
		return nil
	}

	// The nominal duration completes the trial ahead of whatever this
	// frame would have shown.
	if r.holding && r.clock.Since(r.holdStart) >= r.cfg.NominalDuration {
		if err := r.monitor.Stop(trial.ReasonTimeComplete); err == nil {
			r.finalize()
		}
		return nil
	}

	if r.monitor.State() == trial.StateHolding {
		r.history.Append(f)
	}

	checks := r.monitor.ProcessFrame(f)
	r.notifyReadiness(checks)

	if r.monitor.State().Terminal() {
		r.finalize()
	}
	return checks
}

func (r *Runner) notifyReadiness(checks []trial.Check) {
	state := r.monitor.State()
	if state != trial.StateReady && state != trial.StateNotReady {
		return
	}
	ready := state == trial.StateReady
	if r.readinessKnown && ready == r.readiness {
		return
	}
	r.readiness = ready
	r.readinessKnown = true
	monitoring.Debugf("session %s: readiness %v", r.id, ready)
	if r.listener != nil {
		r.listener.ReadinessChanged(ready, checks)
	}
}

// Begin starts the hold. The capture controller calls this when its
// get-ready countdown finishes.
func (r *Runner) Begin() error {
	if err := r.monitor.Begin(); err != nil {
		return err
	}
	r.holdStart = r.clock.Now()
	r.holding = true
	monitoring.Debugf("session %s: hold started", r.id)
	if r.listener != nil {
		r.listener.HoldStarted()
	}
	return nil
}

// Stop ends a running hold by operator request.
func (r *Runner) Stop() error {
	if err := r.monitor.Stop(trial.ReasonManualStop); err != nil {
		return err
	}
	r.finalize()
	return nil
}

func (r *Runner) finalize() {
	if r.done {
		return
	}
	r.done = true

	var hold float64
	if r.holding {
		hold = r.clock.Since(r.holdStart).Seconds()
	}
	r.outcome = Outcome{
		TrialID:     r.id,
		Status:      r.monitor.State(),
		Reason:      r.monitor.Reason(),
		HoldSeconds: units.Round2(hold),
	}
	monitoring.Logf("session %s: %s (%s) after %.2fs, %d frames",
		r.id, r.outcome.Status, r.outcome.Reason, hold, r.history.Len())
	if r.listener != nil {
		r.listener.TrialEnded(r.outcome)
	}
}

// Finish runs the metrics engine over the recording. A trial whose
// recording has no usable frames yields a nil result with the outcome
// intact; that is a legitimate terminal state, not an error.
func (r *Runner) Finish() (*metrics.Result, Outcome, error) {
	if !r.done {
		return nil, Outcome{}, ErrTrialRunning
	}
	result, err := metrics.Compute(r.history)
	if err != nil {
		if errors.Is(err, metrics.ErrNoUsableFrames) {
			monitoring.Logf("session %s: no usable frames, metrics absent", r.id)
			return nil, r.outcome, nil
		}
		return nil, r.outcome, err
	}
	return result, r.outcome, nil
}
