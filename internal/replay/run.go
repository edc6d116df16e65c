package replay

import (
	"errors"
	"fmt"
	"time"

	"github.com/steady-data/balance.report/internal/metrics"
	"github.com/steady-data/balance.report/internal/pose"
	"github.com/steady-data/balance.report/internal/session"
	"github.com/steady-data/balance.report/internal/timeutil"
	"github.com/steady-data/balance.report/internal/trial"
)

// ErrNeverReady is returned by Run when the recording ends without the
// athlete ever reaching a steady starting position.
var ErrNeverReady = errors.New("replay: recording ended before reaching readiness")

// EventKind names a live event captured during a replay.
type EventKind string

const (
	EventReadinessChanged EventKind = "readiness_changed"
	EventHoldStarted      EventKind = "hold_started"
	EventTrialEnded       EventKind = "trial_ended"
)

// Event is one listener callback, stamped with the recording time at
// which it fired.
type Event struct {
	Elapsed time.Duration
	Kind    EventKind
	Ready   bool
	Checks  []trial.Check
	Outcome *session.Outcome
}

// Result bundles everything a replayed trial produced.
type Result struct {
	Outcome    session.Outcome
	Metrics    *metrics.Result // nil when no usable frames were recorded
	Events     []Event
	HoldFrames []pose.Frame // frames that made it into the metrics history
	FramesRead int          // recorded frames delivered to the runner
}

// eventLog records session callbacks with replay timestamps.
type eventLog struct {
	now    time.Duration
	events []Event
}

func (l *eventLog) ReadinessChanged(ready bool, checks []trial.Check) {
	l.events = append(l.events, Event{
		Elapsed: l.now,
		Kind:    EventReadinessChanged,
		Ready:   ready,
		Checks:  checks,
	})
}

func (l *eventLog) HoldStarted() {
	l.events = append(l.events, Event{Elapsed: l.now, Kind: EventHoldStarted})
}

func (l *eventLog) TrialEnded(outcome session.Outcome) {
	o := outcome
	l.events = append(l.events, Event{Elapsed: l.now, Kind: EventTrialEnded, Outcome: &o})
}

// Run replays a recording through a fresh session Runner. The session
// clock follows the recorded frame timestamps, so a replay reproduces
// the live timing decisions exactly. The hold begins on the first frame
// that reports a steady position; a recording that ends mid-hold is
// closed out as a manual stop.
func Run(rec *Recording) (*Result, error) {
	cfg, err := rec.TrialConfig()
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	epoch := time.Unix(0, 0).UTC()
	clock := timeutil.NewMockClock(epoch)
	log := &eventLog{}

	runner, err := session.NewRunner(cfg, clock, log)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	begun := false
	frames := 0
	for _, rf := range rec.Frames {
		f := rf.Frame()
		log.now = f.Timestamp
		clock.Set(epoch.Add(f.Timestamp))

		runner.HandleFrame(f)
		frames++

		if !begun && runner.State() == trial.StateReady {
			if err := runner.Begin(); err != nil {
				return nil, fmt.Errorf("replay: %w", err)
			}
			begun = true
		}
		if runner.Done() {
			break
		}
	}

	if !runner.Done() {
		if !begun {
			return nil, ErrNeverReady
		}
		if err := runner.Stop(); err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
	}

	result, outcome, err := runner.Finish()
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	return &Result{
		Outcome:    outcome,
		Metrics:    result,
		Events:     log.events,
		HoldFrames: runner.History().Frames(),
		FramesRead: frames,
	}, nil
}
