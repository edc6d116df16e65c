package pose

import (
	"sync"
	"time"
)

// Frame is one pose sample. Norm carries normalized image coordinates
// (calibration, trajectory and the trial state machine work on these);
// World carries the estimator's metric coordinates (arm angles work on
// these). Timestamp is relative to trial start.
type Frame struct {
	Index     int
	Timestamp time.Duration
	Norm      LandmarkSet
	World     LandmarkSet
}

// History records the frames of a single trial in arrival order. Writes
// happen during capture; the metrics engine reads it once the trial has
// ended.
type History struct {
	mu     sync.Mutex
	frames []Frame
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Append adds a frame to the history.
func (h *History) Append(f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frames = append(h.frames, f)
}

// Len returns the number of recorded frames.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.frames)
}

// Frames returns a copy of the recorded frames in arrival order.
func (h *History) Frames() []Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Frame, len(h.frames))
	copy(out, h.frames)
	return out
}

// Duration returns the span between the first and last recorded frame,
// or zero when fewer than two frames exist.
func (h *History) Duration() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.frames) < 2 {
		return 0
	}
	return h.frames[len(h.frames)-1].Timestamp - h.frames[0].Timestamp
}
