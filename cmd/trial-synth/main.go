package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/steady-data/balance.report/internal/fsutil"
	"github.com/steady-data/balance.report/internal/pose"
	"github.com/steady-data/balance.report/internal/replay"
	"github.com/steady-data/balance.report/internal/synth"
	"github.com/steady-data/balance.report/internal/version"
)

func main() {
	def := synth.DefaultConfig()

	var (
		outPath     string
		legStr      string
		athleteRef  string
		athleteAge  int
		seed        int64
		fps         float64
		lead        time.Duration
		hold        time.Duration
		nominal     time.Duration
		swayAmp     float64
		swayFreq    float64
		jitter      float64
		armLeft     float64
		armRight    float64
		armWobble   float64
		touchdownAt time.Duration
		slideAt     time.Duration
		showVersion bool
	)

	flag.StringVar(&outPath, "out", "", "output recording path")
	flag.StringVar(&legStr, "leg", string(def.Leg), "leg under test (left or right)")
	flag.StringVar(&athleteRef, "athlete", def.AthleteRef, "athlete reference")
	flag.IntVar(&athleteAge, "age", def.AthleteAge, "athlete age in years (0 to omit)")
	flag.Int64Var(&seed, "seed", 0, "rng seed, same seed gives the same recording")
	flag.Float64Var(&fps, "fps", def.FPS, "frames per second")
	flag.DurationVar(&lead, "lead", def.Lead, "standing lead-in before the lift")
	flag.DurationVar(&hold, "hold", def.Hold, "one-leg portion of the recording")
	flag.DurationVar(&nominal, "nominal", def.Nominal, "nominal hold duration")
	flag.Float64Var(&swayAmp, "sway-amp", def.SwayAmplitudeCM, "hip sway half-range in cm")
	flag.Float64Var(&swayFreq, "sway-freq", def.SwayFrequencyHz, "hip sway frequency in Hz")
	flag.Float64Var(&jitter, "jitter", def.JitterCM, "position noise sigma in cm")
	flag.Float64Var(&armLeft, "arm-left", def.ArmLeftDeg, "mean left arm angle in degrees")
	flag.Float64Var(&armRight, "arm-right", def.ArmRightDeg, "mean right arm angle in degrees")
	flag.Float64Var(&armWobble, "arm-wobble", def.ArmWobbleDeg, "arm angle noise sigma in degrees")
	flag.DurationVar(&touchdownAt, "touchdown-at", 0, "inject a touchdown this far into the hold (0 for none)")
	flag.DurationVar(&slideAt, "slide-at", 0, "inject a support-foot slide this far into the hold (0 for none)")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("trial-synth version %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if outPath == "" {
		log.Fatalf("out must be provided")
	}

	cfg := synth.Config{
		Leg:             pose.Leg(legStr),
		AthleteRef:      athleteRef,
		AthleteAge:      athleteAge,
		Seed:            seed,
		FPS:             fps,
		Lead:            lead,
		Hold:            hold,
		Nominal:         nominal,
		SwayAmplitudeCM: swayAmp,
		SwayFrequencyHz: swayFreq,
		JitterCM:        jitter,
		ArmLeftDeg:      armLeft,
		ArmRightDeg:     armRight,
		ArmWobbleDeg:    armWobble,
		TouchdownAt:     touchdownAt,
		SlideAt:         slideAt,
	}

	g, err := synth.New(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	rec := g.Recording()
	if err := replay.Save(fsutil.OSFileSystem{}, outPath, rec); err != nil {
		log.Fatalf("save recording: %v", err)
	}

	fmt.Printf("generated %s leg trial for %s: %d frames at %.0f fps\n",
		cfg.Leg, cfg.AthleteRef, len(rec.Frames), cfg.FPS)
	if touchdownAt > 0 {
		fmt.Printf("  touchdown injected %.1fs into the hold\n", touchdownAt.Seconds())
	}
	if slideAt > 0 {
		fmt.Printf("  support-foot slide injected %.1fs into the hold\n", slideAt.Seconds())
	}
	fmt.Printf("wrote %s\n", outPath)
}
