// Package replay serializes captured trials and drives them back
// through a session Runner. A recording is a JSON file holding the
// trial config and the per-frame landmarks; replaying one reproduces
// the live timing decisions exactly, which makes recordings the repo's
// end-to-end regression format.
package replay

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/steady-data/balance.report/internal/fsutil"
	"github.com/steady-data/balance.report/internal/pose"
)

// FormatVersion is the recording schema version this package reads and
// writes.
const FormatVersion = 1

// Recording is the serialized form of one captured trial.
type Recording struct {
	Version int             `json:"version"`
	Config  RecordedConfig  `json:"config"`
	Frames  []RecordedFrame `json:"frames"`
}

// RecordedConfig mirrors pose.TrialConfig in wire form.
type RecordedConfig struct {
	Leg            string  `json:"leg"`
	AthleteRef     string  `json:"athlete_ref"`
	AthleteAge     int     `json:"athlete_age,omitempty"`
	NominalSeconds float64 `json:"nominal_seconds"`
}

// RecordedFrame is one pose frame. Landmarks are keyed by joint name;
// joints the estimator did not report are simply absent. Elapsed time
// is microseconds from the start of capture.
type RecordedFrame struct {
	Index     int                      `json:"index"`
	ElapsedUS int64                    `json:"elapsed_us"`
	Norm      map[string]RecordedPoint `json:"norm,omitempty"`
	World     map[string]RecordedPoint `json:"world,omitempty"`
}

// RecordedPoint is one landmark observation.
type RecordedPoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z,omitempty"`
	Visibility float64 `json:"visibility"`
}

var jointsByName = func() map[string]pose.Joint {
	m := make(map[string]pose.Joint, len(pose.AllJoints()))
	for _, j := range pose.AllJoints() {
		m[j.String()] = j
	}
	return m
}()

// NewRecording captures a config and frame sequence in wire form.
func NewRecording(cfg pose.TrialConfig, frames []pose.Frame) *Recording {
	rec := &Recording{
		Version: FormatVersion,
		Config: RecordedConfig{
			Leg:            string(cfg.LegTested),
			AthleteRef:     cfg.AthleteRef,
			AthleteAge:     cfg.AthleteAge,
			NominalSeconds: cfg.NominalDuration.Seconds(),
		},
		Frames: make([]RecordedFrame, 0, len(frames)),
	}
	for _, f := range frames {
		rec.Frames = append(rec.Frames, recordFrame(f))
	}
	return rec
}

// TrialConfig converts the wire config back to the engine form.
func (r *Recording) TrialConfig() (pose.TrialConfig, error) {
	cfg := pose.TrialConfig{
		LegTested:       pose.Leg(r.Config.Leg),
		AthleteRef:      r.Config.AthleteRef,
		AthleteAge:      r.Config.AthleteAge,
		NominalDuration: time.Duration(r.Config.NominalSeconds * float64(time.Second)),
	}
	if err := cfg.Validate(); err != nil {
		return pose.TrialConfig{}, err
	}
	return cfg, nil
}

// PoseFrames decodes every recorded frame.
func (r *Recording) PoseFrames() []pose.Frame {
	frames := make([]pose.Frame, 0, len(r.Frames))
	for _, rf := range r.Frames {
		frames = append(frames, rf.Frame())
	}
	return frames
}

// Frame decodes one recorded frame. Unknown joint names are dropped.
func (rf RecordedFrame) Frame() pose.Frame {
	f := pose.Frame{
		Index:     rf.Index,
		Timestamp: time.Duration(rf.ElapsedUS) * time.Microsecond,
	}
	applyLandmarks(&f.Norm, rf.Norm)
	applyLandmarks(&f.World, rf.World)
	return f
}

func recordFrame(f pose.Frame) RecordedFrame {
	return RecordedFrame{
		Index:     f.Index,
		ElapsedUS: f.Timestamp.Microseconds(),
		Norm:      recordLandmarks(f.Norm),
		World:     recordLandmarks(f.World),
	}
}

func recordLandmarks(set pose.LandmarkSet) map[string]RecordedPoint {
	var out map[string]RecordedPoint
	for _, j := range pose.AllJoints() {
		lm, ok := set.At(j)
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[string]RecordedPoint)
		}
		out[j.String()] = RecordedPoint{X: lm.X, Y: lm.Y, Z: lm.Z, Visibility: lm.Visibility}
	}
	return out
}

func applyLandmarks(set *pose.LandmarkSet, points map[string]RecordedPoint) {
	for name, p := range points {
		j, ok := jointsByName[name]
		if !ok {
			continue
		}
		set.Set(j, pose.Landmark{X: p.X, Y: p.Y, Z: p.Z, Visibility: p.Visibility})
	}
}

// Load reads and validates a recording.
func Load(fsys fsutil.FileSystem, path string) (*Recording, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}
	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse recording: %w", err)
	}
	if rec.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported recording version %d", rec.Version)
	}
	if len(rec.Frames) == 0 {
		return nil, fmt.Errorf("recording has no frames")
	}
	return &rec, nil
}

// Save writes a recording, creating parent directories as needed.
func Save(fsys fsutil.FileSystem, path string, rec *Recording) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode recording: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create recording dir: %w", err)
		}
	}
	if err := fsys.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write recording: %w", err)
	}
	return nil
}
