// Package monitor renders diagnostic plots from recorded trial motion.
//
// Plots are a debugging aid, not part of the assessment output. Sampling
// is disabled until Start is called, so a plotter can stay wired into the
// pipeline without costing anything during normal runs.
package monitor

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/steady-data/balance.report/internal/filter"
	"github.com/steady-data/balance.report/internal/metrics"
	"github.com/steady-data/balance.report/internal/pose"
	"github.com/steady-data/balance.report/internal/units"
)

var (
	primaryColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	secondaryColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	thresholdColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
)

// trajectorySample is one hip midpoint observation, in centimeters
// relative to the start of the trial.
type trajectorySample struct {
	ElapsedSeconds float64
	Point          filter.Point
}

// TrajectoryPlotter collects sway trajectories per trial and renders them
// as PNG files for offline inspection.
type TrajectoryPlotter struct {
	mu        sync.Mutex
	enabled   bool
	outputDir string
	samples   map[string][]trajectorySample
}

// NewTrajectoryPlotter creates a disabled plotter.
func NewTrajectoryPlotter() *TrajectoryPlotter {
	return &TrajectoryPlotter{
		samples: make(map[string][]trajectorySample),
	}
}

// Start enables sampling and sets the directory plots will be written to.
// Any samples from a previous run are discarded.
func (tp *TrajectoryPlotter) Start(outputDir string) error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	tp.outputDir = outputDir
	tp.enabled = true
	tp.samples = make(map[string][]trajectorySample)
	return nil
}

// Stop disables sampling. Call GeneratePlots() to produce output files.
func (tp *TrajectoryPlotter) Stop() {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.enabled = false
}

// IsEnabled returns true if the plotter is currently recording.
func (tp *TrajectoryPlotter) IsEnabled() bool {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return tp.enabled
}

// Sample records one trajectory point for a trial. The point is the hip
// midpoint displacement in centimeters relative to the trial start.
func (tp *TrajectoryPlotter) Sample(trialID string, elapsedSeconds float64, point filter.Point) {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if !tp.enabled || trialID == "" {
		return
	}
	tp.samples[trialID] = append(tp.samples[trialID], trajectorySample{
		ElapsedSeconds: elapsedSeconds,
		Point:          point,
	})
}

// SampleFrames records the hip midpoint path of a whole frame sequence at
// once. Frames missing either hip are skipped; the first usable frame
// defines the origin and the zero of the elapsed axis. Points are raw
// midpoints, not the smoothed trajectory the metrics run on.
func (tp *TrajectoryPlotter) SampleFrames(trialID string, frames []pose.Frame, scale units.Scale) {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if !tp.enabled || trialID == "" {
		return
	}

	var origin filter.Point
	var start time.Duration
	first := true
	for _, f := range frames {
		if !f.Norm.Usable(pose.LeftHip, pose.RightHip) {
			continue
		}
		l, _ := f.Norm.At(pose.LeftHip)
		r, _ := f.Norm.At(pose.RightHip)
		mid := filter.Point{X: (l.X + r.X) / 2, Y: (l.Y + r.Y) / 2}
		if first {
			origin = mid
			start = f.Timestamp
			first = false
		}
		tp.samples[trialID] = append(tp.samples[trialID], trajectorySample{
			ElapsedSeconds: (f.Timestamp - start).Seconds(),
			Point: filter.Point{
				X: scale.CM(mid.X - origin.X),
				Y: scale.CM(mid.Y - origin.Y),
			},
		})
	}
}

// GetOutputDir returns the current output directory for plots.
func (tp *TrajectoryPlotter) GetOutputDir() string {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return tp.outputDir
}

// GetSampleCount returns the total number of samples collected.
func (tp *TrajectoryPlotter) GetSampleCount() int {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	count := 0
	for _, samples := range tp.samples {
		count += len(samples)
	}
	return count
}

// GeneratePlots creates PNG files for each sampled trial: the sway path
// with the correction threshold circle, and both displacement axes over
// time. Returns the number of files written and any error.
func (tp *TrajectoryPlotter) GeneratePlots() (int, error) {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if tp.outputDir == "" {
		return 0, fmt.Errorf("no output directory configured")
	}

	if len(tp.samples) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(tp.samples))
	for id := range tp.samples {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fileCount := 0
	for _, id := range ids {
		samples := tp.samples[id]
		if len(samples) == 0 {
			continue
		}
		if err := tp.generatePathPlot(id, samples); err != nil {
			return fileCount, fmt.Errorf("trial %s: %w", id, err)
		}
		fileCount++
		if err := tp.generateDisplacementPlot(id, samples); err != nil {
			return fileCount, fmt.Errorf("trial %s: %w", id, err)
		}
		fileCount++
	}

	return fileCount, nil
}

// generatePathPlot draws the X/Y sway path with the correction threshold
// circle around the trial origin.
func (tp *TrajectoryPlotter) generatePathPlot(trialID string, samples []trajectorySample) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Sway Path - %s", trialID)
	p.X.Label.Text = "X displacement (cm)"
	p.Y.Label.Text = "Y displacement (cm)"

	pts := make(plotter.XYs, len(samples))
	lim := metrics.CorrectionThresholdCM
	for i, s := range samples {
		pts[i] = plotter.XY{X: s.Point.X, Y: s.Point.Y}
		if v := math.Abs(s.Point.X); v > lim {
			lim = v
		}
		if v := math.Abs(s.Point.Y); v > lim {
			lim = v
		}
	}

	// Symmetric limits on a square canvas keep the circle round.
	lim *= 1.1
	p.X.Min, p.X.Max = -lim, lim
	p.Y.Min, p.Y.Max = -lim, lim

	pathLine, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	pathLine.Color = primaryColor
	pathLine.Width = vg.Points(1)
	p.Add(pathLine)
	p.Legend.Add("hip midpoint", pathLine)

	circleLine, err := plotter.NewLine(circlePoints(metrics.CorrectionThresholdCM))
	if err != nil {
		return err
	}
	circleLine.Color = thresholdColor
	circleLine.Width = vg.Points(1)
	p.Add(circleLine)
	p.Legend.Add("correction threshold", circleLine)

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	file := filepath.Join(tp.outputDir, fmt.Sprintf("%s_sway_path.png", trialID))
	if err := p.Save(6*vg.Inch, 6*vg.Inch, file); err != nil {
		return fmt.Errorf("save sway path plot: %w", err)
	}
	return nil
}

// generateDisplacementPlot draws both displacement axes against elapsed time.
func (tp *TrajectoryPlotter) generateDisplacementPlot(trialID string, samples []trajectorySample) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Displacement - %s", trialID)
	p.X.Label.Text = "Elapsed (s)"
	p.Y.Label.Text = "Displacement (cm)"

	xPts := make(plotter.XYs, len(samples))
	yPts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		xPts[i] = plotter.XY{X: s.ElapsedSeconds, Y: s.Point.X}
		yPts[i] = plotter.XY{X: s.ElapsedSeconds, Y: s.Point.Y}
	}

	xLine, err := plotter.NewLine(xPts)
	if err != nil {
		return err
	}
	xLine.Color = primaryColor
	xLine.Width = vg.Points(1)
	p.Add(xLine)
	p.Legend.Add("x", xLine)

	yLine, err := plotter.NewLine(yPts)
	if err != nil {
		return err
	}
	yLine.Color = secondaryColor
	yLine.Width = vg.Points(1)
	p.Add(yLine)
	p.Legend.Add("y", yLine)

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	file := filepath.Join(tp.outputDir, fmt.Sprintf("%s_displacement.png", trialID))
	if err := p.Save(14*vg.Inch, 6*vg.Inch, file); err != nil {
		return fmt.Errorf("save displacement plot: %w", err)
	}
	return nil
}

// circlePoints approximates a circle of the given radius around the origin.
func circlePoints(radius float64) plotter.XYs {
	const segments = 128
	pts := make(plotter.XYs, segments+1)
	for i := 0; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / segments
		pts[i] = plotter.XY{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
	}
	return pts
}

// MakePlotOutputDir returns a timestamped directory under baseDir, named
// after the recording when one is given.
func MakePlotOutputDir(baseDir, recordingFile string) string {
	ts := time.Now().Format("20060102_150405")
	if recordingFile == "" {
		return filepath.Join(baseDir, "session_"+ts)
	}
	base := filepath.Base(recordingFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(baseDir, name, ts)
}
