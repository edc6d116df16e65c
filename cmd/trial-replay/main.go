package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/steady-data/balance.report/internal/compare"
	"github.com/steady-data/balance.report/internal/export"
	"github.com/steady-data/balance.report/internal/fsutil"
	"github.com/steady-data/balance.report/internal/ltad"
	"github.com/steady-data/balance.report/internal/monitor"
	"github.com/steady-data/balance.report/internal/monitoring"
	"github.com/steady-data/balance.report/internal/pose"
	"github.com/steady-data/balance.report/internal/replay"
	"github.com/steady-data/balance.report/internal/store"
	"github.com/steady-data/balance.report/internal/trend"
	"github.com/steady-data/balance.report/internal/trial"
	"github.com/steady-data/balance.report/internal/version"
)

func main() {
	var recPath string
	var pairPath string
	var dbPath string
	var migrationsDir string
	var parquetPath string
	var reportPath string
	var plotDir string
	var verbose bool
	var showVersion bool

	flag.StringVar(&recPath, "rec", "", "path to a recording JSON file")
	flag.StringVar(&pairPath, "pair", "", "second recording for a bilateral comparison")
	flag.StringVar(&dbPath, "db", "", "sqlite database to append results to")
	flag.StringVar(&migrationsDir, "migrations", "internal/store/migrations", "path to schema migrations")
	flag.StringVar(&parquetPath, "parquet", "", "write recorded keypoints to this parquet file")
	flag.StringVar(&reportPath, "report", "", "write the trial report JSON to this path")
	flag.StringVar(&plotDir, "plots", "", "write diagnostic plots under this directory")
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("trial-replay version %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	monitoring.SetVerbose(verbose)

	if recPath == "" {
		log.Fatalf("rec must be provided")
	}

	fsys := fsutil.OSFileSystem{}
	now := time.Now()

	rec, cfg, res := runRecording(fsys, recPath)
	printSummary(cfg, res)

	var pairCfg pose.TrialConfig
	var pairRes *replay.Result
	if pairPath != "" {
		_, pairCfg, pairRes = runRecording(fsys, pairPath)
		printSummary(pairCfg, pairRes)
		printComparison(cfg, res, pairCfg, pairRes)
	}

	if dbPath != "" {
		s, err := store.Open(dbPath, migrationsDir)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer s.Close()

		saveTrial(s, cfg, res, now)
		if pairRes != nil {
			saveTrial(s, pairCfg, pairRes, now)
		}
		printHistory(s, cfg.AthleteRef)
	}

	if parquetPath != "" {
		frames := rec.PoseFrames()
		if err := export.WriteKeypoints(parquetPath, res.Outcome.TrialID, frames); err != nil {
			log.Fatalf("write keypoints: %v", err)
		}
		fmt.Printf("archived %d frames to %s\n", len(frames), parquetPath)
	}

	if reportPath != "" {
		report := export.NewTrialReport(cfg, res.Outcome, res.Metrics, now)
		if err := export.WriteTrialJSON(reportPath, report); err != nil {
			log.Fatalf("write report: %v", err)
		}
		fmt.Printf("wrote report to %s\n", reportPath)
	}

	if plotDir != "" {
		writePlots(plotDir, recPath, res, pairRes)
	}
}

func runRecording(fsys fsutil.FileSystem, path string) (*replay.Recording, pose.TrialConfig, *replay.Result) {
	fmt.Printf("replaying %s\n", path)
	rec, err := replay.Load(fsys, path)
	if err != nil {
		log.Fatalf("load %s: %v", path, err)
	}
	res, err := replay.Run(rec)
	if err != nil {
		log.Fatalf("%s: %v", path, err)
	}
	cfg, err := rec.TrialConfig()
	if err != nil {
		log.Fatalf("%s: %v", path, err)
	}
	return rec, cfg, res
}

func printSummary(cfg pose.TrialConfig, res *replay.Result) {
	out := res.Outcome
	fmt.Printf("trial %s: %s (%s), held %.2fs of %.0fs nominal\n",
		out.TrialID, out.Status, out.Reason, out.HoldSeconds, cfg.NominalDuration.Seconds())
	fmt.Printf("  athlete %s (age %d), %s leg, %d frames read\n",
		cfg.AthleteRef, cfg.AthleteAge, cfg.LegTested, res.FramesRead)

	band := ltad.DurationScore(out.HoldSeconds)
	fmt.Printf("  duration band %d (%s), %s age expectation\n",
		band.Score, band.Label, ltad.AgeExpectation(cfg.AthleteAge, band.Score))

	m := res.Metrics
	if m == nil {
		fmt.Println("  no usable frames, metrics skipped")
		return
	}
	fmt.Printf("  stability %.1f/100, sway std x %.2f cm y %.2f cm\n", m.Stability, m.Sway.StdX, m.Sway.StdY)
	fmt.Printf("  path %.2f cm at %.2f cm/s, %d corrections\n", m.Sway.PathLength, m.Sway.Velocity, m.Sway.Corrections)
	fmt.Printf("  arms L %.1f deg R %.1f deg (asymmetry %.1f deg)\n", m.Arms.Left, m.Arms.Right, m.Arms.Asymmetry)

	logEvents(res)
}

// logEvents dumps the session event log when -v is set.
func logEvents(res *replay.Result) {
	for _, ev := range res.Events {
		switch ev.Kind {
		case replay.EventReadinessChanged:
			monitoring.Debugf("event %6.2fs readiness=%t%s", ev.Elapsed.Seconds(), ev.Ready, checkSummary(ev.Checks))
		case replay.EventHoldStarted:
			monitoring.Debugf("event %6.2fs hold started", ev.Elapsed.Seconds())
		case replay.EventTrialEnded:
			monitoring.Debugf("event %6.2fs trial ended: %s (%s)", ev.Elapsed.Seconds(), ev.Outcome.Status, ev.Outcome.Reason)
		}
	}
}

func checkSummary(checks []trial.Check) string {
	var failing []string
	for _, c := range checks {
		if !c.OK && !c.Skipped {
			failing = append(failing, c.Name)
		}
	}
	if len(failing) == 0 {
		return ""
	}
	return " waiting on " + strings.Join(failing, ", ")
}

func printComparison(cfgA pose.TrialConfig, resA *replay.Result, cfgB pose.TrialConfig, resB *replay.Result) {
	if cfgA.LegTested == cfgB.LegTested {
		log.Fatalf("bilateral comparison needs one left and one right trial, got %s twice", cfgA.LegTested)
	}
	left, right := compareInput(resA), compareInput(resB)
	if cfgA.LegTested == pose.LegRight {
		left, right = right, left
	}
	c := compare.Compare(left, right)
	fmt.Printf("bilateral symmetry %.1f/100 (%s), dominant leg %s\n", c.OverallSymmetry, c.Assessment, c.DominantLeg)
	fmt.Printf("  hold diff %.1fs (%.1f%%), sway diff %.1f cm/s, arm diff %.1f deg, corrections diff %+d\n",
		c.DurationDiff, c.DurationDiffPct, c.SwayDiff, c.ArmAngleDiff, c.CorrectionsDiff)
}

func compareInput(res *replay.Result) compare.Input {
	in := compare.Input{HoldSeconds: res.Outcome.HoldSeconds}
	if res.Metrics != nil {
		in.SwayVelocity = res.Metrics.Sway.Velocity
		in.ArmLeftDeg = res.Metrics.Arms.Left
		in.ArmRightDeg = res.Metrics.Arms.Right
		in.Corrections = res.Metrics.Sway.Corrections
	}
	return in
}

func saveTrial(s *store.Store, cfg pose.TrialConfig, res *replay.Result, at time.Time) {
	rec := store.NewTrialRecord(cfg, res.Outcome, res.Metrics, at)
	if err := s.SaveTrial(rec); err != nil {
		log.Fatalf("save trial: %v", err)
	}
	fmt.Printf("saved trial %s for %s\n", rec.ID, rec.AthleteRef)
}

func printHistory(s *store.Store, athleteRef string) {
	records, err := s.TrialsForAthlete(athleteRef)
	if err != nil {
		log.Fatalf("load history: %v", err)
	}
	samples := make([]trend.Sample, len(records))
	for i, r := range records {
		samples[i] = trend.Sample{
			At:    r.RecordedAt,
			Hold:  r.HoldSeconds,
			Score: ltad.DurationScore(r.HoldSeconds).Score,
		}
	}
	a := trend.Analyze(samples)
	fmt.Printf("history for %s: %d trials, %s (%s), net %+.2fs, consistency %.2f\n",
		athleteRef, a.SampleCount, a.Trend, a.Strength, a.NetChange, a.Consistency)
	for _, rev := range a.Reversals {
		fmt.Printf("  reversal at trial %d: %s to %s (%.2fs -> %.2fs)\n",
			rev.Index+1, rev.From, rev.To, rev.FromHold, rev.ToHold)
	}
}

func writePlots(baseDir, recPath string, results ...*replay.Result) {
	plotter := monitor.NewTrajectoryPlotter()
	outDir := monitor.MakePlotOutputDir(baseDir, recPath)
	if err := plotter.Start(outDir); err != nil {
		log.Fatalf("start plotter: %v", err)
	}
	for _, r := range results {
		if r == nil || r.Metrics == nil {
			continue
		}
		plotter.SampleFrames(r.Outcome.TrialID, r.HoldFrames, r.Metrics.Scale)
	}
	n, err := plotter.GeneratePlots()
	if err != nil {
		log.Fatalf("generate plots: %v", err)
	}
	fmt.Printf("wrote %d plots to %s\n", n, outDir)
}
