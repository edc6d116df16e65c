// Package filter implements the One Euro adaptive low-pass filter used
// to remove pose-estimation jitter from landmark trajectories. The
// filter smooths aggressively while the signal is slow and loosens as
// it speeds up, which keeps genuine postural motion visible.
package filter

import (
	"math"
	"time"
)

// Filter tuning for ~30 Hz pose streams.
const (
	defaultMinCutoff = 1.0   // Hz, smoothing floor for slow motion
	defaultBeta      = 0.007 // cutoff gain per unit of derivative
	defaultDCutoff   = 1.0   // Hz, cutoff for the derivative estimate
	nominalRateHz    = 30.0  // assumed rate when timestamps are unusable
	maxSampleGap     = time.Second
)

// Point is a 2D sample. Units depend on the caller: normalized image
// space on input to the smoother, centimeters after scaling.
type Point struct {
	X float64
	Y float64
}

// lowPass is a first-order low-pass stage with externally supplied alpha.
type lowPass struct {
	primed bool
	state  float64
}

func (f *lowPass) filter(v, alpha float64) float64 {
	if !f.primed {
		f.primed = true
		f.state = v
		return v
	}
	f.state = alpha*v + (1-alpha)*f.state
	return f.state
}

// OneEuro filters a single scalar axis. Zero value is not usable; use
// NewOneEuro.
type OneEuro struct {
	minCutoff float64 // Hz
	beta      float64
	dCutoff   float64 // Hz
	freq      float64 // Hz, re-estimated from timestamps

	value  lowPass
	deriv  lowPass
	primed bool
	lastV  float64
	lastAt time.Duration
}

// NewOneEuro returns a filter tuned for pose landmark streams.
func NewOneEuro() *OneEuro {
	return &OneEuro{
		minCutoff: defaultMinCutoff,
		beta:      defaultBeta,
		dCutoff:   defaultDCutoff,
		freq:      nominalRateHz,
	}
}

// smoothingAlpha converts a cutoff frequency into the low-pass mixing
// factor for the current sampling rate.
func smoothingAlpha(cutoff, freq float64) float64 {
	tau := 1.0 / (2.0 * math.Pi * cutoff)
	dt := 1.0 / freq
	return 1.0 / (1.0 + tau/dt)
}

// Filter feeds one sample taken at the given trial-relative time and
// returns the smoothed value. The first sample passes through unchanged.
// The sampling rate is re-estimated from successive timestamps; a
// non-positive or oversized gap falls back to the nominal rate.
func (f *OneEuro) Filter(v float64, at time.Duration) float64 {
	if !f.primed {
		f.primed = true
		f.lastV = v
		f.lastAt = at
		f.deriv.filter(0, smoothingAlpha(f.dCutoff, f.freq))
		return f.value.filter(v, smoothingAlpha(f.minCutoff, f.freq))
	}

	if gap := at - f.lastAt; gap > 0 && gap <= maxSampleGap {
		f.freq = 1.0 / gap.Seconds()
	} else {
		f.freq = nominalRateHz
	}

	rawDeriv := (v - f.lastV) * f.freq
	deriv := f.deriv.filter(rawDeriv, smoothingAlpha(f.dCutoff, f.freq))
	cutoff := f.minCutoff + f.beta*math.Abs(deriv)

	f.lastV = v
	f.lastAt = at
	return f.value.filter(v, smoothingAlpha(cutoff, f.freq))
}

// SmoothPath runs two independent One Euro filters over a 2D
// trajectory. times must parallel points; any sample without a
// timestamp is assumed to arrive at the nominal rate. Output length
// always equals input length.
func SmoothPath(points []Point, times []time.Duration) []Point {
	if len(points) == 0 {
		return nil
	}
	fx := NewOneEuro()
	fy := NewOneEuro()
	out := make([]Point, len(points))
	for i, p := range points {
		var at time.Duration
		if i < len(times) {
			at = times[i]
		} else {
			at = time.Duration(float64(i) * float64(time.Second) / nominalRateHz)
		}
		out[i] = Point{
			X: fx.Filter(p.X, at),
			Y: fy.Filter(p.Y, at),
		}
	}
	return out
}
