// Package trend classifies an athlete's balance trajectory across
// repeated trials. The classification is deterministic on purpose:
// windowed means and relative thresholds, so the same history always
// reads the same way in a report.
package trend

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/steady-data/balance.report/internal/units"
)

const (
	// Per-step relative change below this counts as flat.
	stepThreshold = 0.05
	// Windowed means further apart than this flag a trend.
	trendThreshold = 0.10
	// Windowed means further apart than this make it significant.
	significantThreshold = 0.25
	// Most recent samples compared against everything older.
	recentWindow = 3
)

// Sample is one historical trial: when it ran, how long the hold
// lasted and the duration band it earned.
type Sample struct {
	At    time.Time
	Hold  float64 // seconds
	Score int
}

// Direction of a single step between consecutive samples.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Classification of the overall trajectory.
type Classification string

const (
	TrendImproving Classification = "improving"
	TrendDeclining Classification = "declining"
	TrendStable    Classification = "stable"
)

// Strength of the classified trend.
type Strength string

const (
	StrengthSignificant Strength = "significant"
	StrengthModerate    Strength = "moderate"
	StrengthSlight      Strength = "slight"
)

// Reversal marks the sample where the trajectory flipped direction.
type Reversal struct {
	Index    int
	At       time.Time
	From     Direction
	To       Direction
	FromHold float64
	ToHold   float64
}

// Analysis summarizes a trial series. First, Latest and Peak are zero
// samples when the series is empty.
type Analysis struct {
	Trend       Classification
	Strength    Strength
	Reversals   []Reversal
	First       Sample
	Latest      Sample
	Peak        Sample
	Consistency float64 // 0 erratic, 1 steady
	NetChange   float64 // latest minus first, seconds
	PeakDrop    float64 // peak minus latest, seconds
	SampleCount int
}

// Analyze classifies a series of trials. Samples are ordered by time
// before analysis, so callers can pass store rows as loaded. Fewer
// than two samples report a stable trend.
func Analyze(samples []Sample) Analysis {
	out := Analysis{
		Trend:       TrendStable,
		Strength:    StrengthSlight,
		Consistency: 1.0,
		SampleCount: len(samples),
	}
	if len(samples) == 0 {
		return out
	}

	ordered := make([]Sample, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].At.Before(ordered[j].At) })

	out.First = ordered[0]
	out.Latest = ordered[len(ordered)-1]
	out.Peak = ordered[0]
	for _, s := range ordered[1:] {
		if s.Hold > out.Peak.Hold {
			out.Peak = s
		}
	}
	out.NetChange = units.Round2(out.Latest.Hold - out.First.Hold)
	out.PeakDrop = units.Round2(out.Peak.Hold - out.Latest.Hold)

	if len(ordered) < 2 {
		return out
	}

	holds := make([]float64, len(ordered))
	for i, s := range ordered {
		holds[i] = s.Hold
	}

	out.Reversals = detectReversals(ordered)
	out.Trend, out.Strength = classify(holds)
	out.Consistency = consistency(holds)
	return out
}

// classify compares the recent window against older history when there
// is enough of it, and falls back to a first-to-last comparison for
// two or three samples.
func classify(holds []float64) (Classification, Strength) {
	if len(holds) > recentWindow {
		recent := stat.Mean(holds[len(holds)-recentWindow:], nil)
		older := stat.Mean(holds[:len(holds)-recentWindow], nil)
		switch {
		case recent > older*(1+trendThreshold):
			if recent > older*(1+significantThreshold) {
				return TrendImproving, StrengthSignificant
			}
			return TrendImproving, StrengthModerate
		case recent < older*(1-trendThreshold):
			if recent < older*(1-significantThreshold) {
				return TrendDeclining, StrengthSignificant
			}
			return TrendDeclining, StrengthModerate
		default:
			return TrendStable, StrengthSlight
		}
	}

	first, last := holds[0], holds[len(holds)-1]
	if first <= 0 {
		// No baseline to measure relative change against.
		return TrendStable, StrengthSlight
	}
	pct := (last - first) / first * 100

	trend := TrendStable
	switch {
	case pct > 100*trendThreshold:
		trend = TrendImproving
	case pct < -100*trendThreshold:
		trend = TrendDeclining
	}
	switch {
	case math.Abs(pct) >= 100*significantThreshold:
		return trend, StrengthSignificant
	case math.Abs(pct) >= 100*trendThreshold:
		return trend, StrengthModerate
	default:
		return trend, StrengthSlight
	}
}

// detectReversals walks consecutive steps and records each one that
// opposes the previous non-flat direction. Flat steps never reset the
// running direction.
func detectReversals(ordered []Sample) []Reversal {
	var reversals []Reversal
	var current Direction

	for i := 1; i < len(ordered); i++ {
		prev, curr := ordered[i-1].Hold, ordered[i].Hold

		step := DirectionFlat
		switch {
		case curr > prev*(1+stepThreshold):
			step = DirectionUp
		case curr < prev*(1-stepThreshold):
			step = DirectionDown
		}

		if current != "" && step != DirectionFlat && step != current {
			reversals = append(reversals, Reversal{
				Index:    i,
				At:       ordered[i].At,
				From:     current,
				To:       step,
				FromHold: prev,
				ToHold:   curr,
			})
		}
		if step != DirectionFlat {
			current = step
		}
	}
	return reversals
}

// consistency is the inverse coefficient of variation, floored at zero.
func consistency(holds []float64) float64 {
	mean := stat.Mean(holds, nil)
	if mean <= 0 {
		return 0.5
	}
	cv := stat.StdDev(holds, nil) / mean
	return units.Round2(math.Max(0, 1-cv))
}
