// Package synth generates deterministic synthetic trial recordings.
//
// The generator models a child balancing on one leg in front of a
// fixed camera: a standing lead-in, the leg lift, low-frequency hip
// sway with white jitter on top, arms held at configurable angles and
// optional failure injection. The same config and seed always produce
// the same recording, which makes synthetic trials usable as
// regression fixtures.
package synth

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/steady-data/balance.report/internal/pose"
	"github.com/steady-data/balance.report/internal/replay"
	"github.com/steady-data/balance.report/internal/units"
)

// Base stance. Normalized shoulders are 0.2 of the frame apart, which
// the engine calibrates to 160 cm per unit; world coordinates use the
// same proportions in rough meters.
const (
	normShoulderY  = 0.30
	normShoulderDX = 0.10
	normHipY       = 0.55
	normHipDX      = 0.06
	normAnkleY     = 0.90
	normAnkleDX    = 0.05
	normArmLen     = 0.26
	normLiftRise   = 0.10

	worldShoulderY  = -0.45
	worldShoulderDX = 0.18
	worldHipY       = 0.0
	worldHipDX      = 0.10
	worldAnkleY     = 0.80
	worldAnkleDX    = 0.12
	worldArmLen     = 0.45
	worldLiftRise   = 0.15

	// Injected support-foot slide, well past the stationarity tolerance.
	slideOffsetNorm = 0.08

	visibility = 0.98
)

// Config drives the generator. Start from DefaultConfig and override;
// zero values are not filled in.
type Config struct {
	Leg        pose.Leg
	AthleteRef string
	AthleteAge int

	// Seed fixes the jitter stream. Same seed, same recording.
	Seed int64

	FPS     float64
	Lead    time.Duration // standing lead-in before the leg lifts
	Hold    time.Duration // one-leg portion of the recording
	Nominal time.Duration // trial nominal hold duration

	SwayAmplitudeCM float64 // hip sway half-range
	SwayFrequencyHz float64
	JitterCM        float64 // white-noise sigma on the body position

	ArmLeftDeg   float64 // mean arm angle, +90 hanging, 0 horizontal
	ArmRightDeg  float64
	ArmWobbleDeg float64 // noise sigma on the arm angles

	// TouchdownAt and SlideAt inject a failure that many seconds into
	// the hold. Zero means no injection.
	TouchdownAt time.Duration
	SlideAt     time.Duration
}

// DefaultConfig is a clean 20 second hold that completes on time.
func DefaultConfig() Config {
	return Config{
		Leg:             pose.LegLeft,
		AthleteRef:      "athlete_synth",
		AthleteAge:      10,
		FPS:             30,
		Lead:            time.Second,
		Hold:            21 * time.Second,
		Nominal:         20 * time.Second,
		SwayAmplitudeCM: 1.5,
		SwayFrequencyHz: 0.4,
		JitterCM:        0.15,
		ArmLeftDeg:      75,
		ArmRightDeg:     75,
		ArmWobbleDeg:    2,
	}
}

// Validate checks the config for values the generator cannot work with.
func (c Config) Validate() error {
	if !c.Leg.Valid() {
		return fmt.Errorf("invalid leg %q", c.Leg)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %v", c.FPS)
	}
	if c.Hold <= 0 {
		return fmt.Errorf("hold must be positive, got %v", c.Hold)
	}
	if c.Nominal <= 0 {
		return fmt.Errorf("nominal duration must be positive, got %v", c.Nominal)
	}
	if c.SwayAmplitudeCM < 0 || c.JitterCM < 0 || c.ArmWobbleDeg < 0 {
		return fmt.Errorf("amplitude, jitter and wobble must not be negative")
	}
	return nil
}

// Generator produces synthetic recordings.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New creates a generator for the config.
func New(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}, nil
}

// TrialConfig returns the session config the recording embeds.
func (g *Generator) TrialConfig() pose.TrialConfig {
	return pose.TrialConfig{
		LegTested:       g.cfg.Leg,
		AthleteRef:      g.cfg.AthleteRef,
		AthleteAge:      g.cfg.AthleteAge,
		NominalDuration: g.cfg.Nominal,
	}
}

// Recording generates the full synthetic recording.
func (g *Generator) Recording() *replay.Recording {
	return replay.NewRecording(g.TrialConfig(), g.Frames())
}

// Frames generates the frame sequence: the standing lead-in, then the
// hold with sway, jitter and any injected failure.
func (g *Generator) Frames() []pose.Frame {
	total := g.cfg.Lead + g.cfg.Hold
	step := time.Duration(float64(time.Second) / g.cfg.FPS)
	n := int(total / step)

	frames := make([]pose.Frame, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, g.frame(i, time.Duration(i)*step))
	}
	return frames
}

func (g *Generator) frame(index int, at time.Duration) pose.Frame {
	cmToNorm := (2 * normShoulderDX) / units.ShoulderWidthCM
	worldPerNorm := worldShoulderDX / normShoulderDX

	lifted := at >= g.cfg.Lead
	holdTime := (at - g.cfg.Lead).Seconds()

	// One body offset moves every landmark except the planted support
	// foot. Four rand draws per frame, always in the same order.
	var swayX, swayY float64
	if lifted {
		amp := g.cfg.SwayAmplitudeCM * cmToNorm
		swayX = amp * math.Sin(2*math.Pi*g.cfg.SwayFrequencyHz*holdTime)
		swayY = 0.6 * amp * math.Sin(2*math.Pi*0.8*g.cfg.SwayFrequencyHz*holdTime+1.1)
	}
	jitter := g.cfg.JitterCM * cmToNorm
	offX := swayX + jitter*g.rng.NormFloat64()
	offY := swayY + jitter*g.rng.NormFloat64()

	thetaL := (g.cfg.ArmLeftDeg + g.cfg.ArmWobbleDeg*g.rng.NormFloat64()) * math.Pi / 180
	thetaR := (g.cfg.ArmRightDeg + g.cfg.ArmWobbleDeg*g.rng.NormFloat64()) * math.Pi / 180

	touchdown := g.cfg.TouchdownAt > 0 && lifted && holdTime >= g.cfg.TouchdownAt.Seconds()
	slid := g.cfg.SlideAt > 0 && lifted && holdTime >= g.cfg.SlideAt.Seconds()

	f := pose.Frame{Index: index, Timestamp: at}

	set := func(space *pose.LandmarkSet, j pose.Joint, x, y float64) {
		space.Set(j, pose.Landmark{X: x, Y: y, Visibility: visibility})
	}

	// Shoulders, hips and wrists ride the body offset in both spaces.
	nsy := normShoulderY + offY
	set(&f.Norm, pose.LeftShoulder, 0.5+normShoulderDX+offX, nsy)
	set(&f.Norm, pose.RightShoulder, 0.5-normShoulderDX+offX, nsy)
	set(&f.Norm, pose.LeftWrist, 0.5+normShoulderDX+offX+normArmLen*math.Cos(thetaL), nsy+normArmLen*math.Sin(thetaL))
	set(&f.Norm, pose.RightWrist, 0.5-normShoulderDX+offX-normArmLen*math.Cos(thetaR), nsy+normArmLen*math.Sin(thetaR))
	set(&f.Norm, pose.LeftHip, 0.5+normHipDX+offX, normHipY+offY)
	set(&f.Norm, pose.RightHip, 0.5-normHipDX+offX, normHipY+offY)

	wx := offX * worldPerNorm
	wy := offY * worldPerNorm
	wsy := worldShoulderY + wy
	set(&f.World, pose.LeftShoulder, worldShoulderDX+wx, wsy)
	set(&f.World, pose.RightShoulder, -worldShoulderDX+wx, wsy)
	set(&f.World, pose.LeftWrist, worldShoulderDX+wx+worldArmLen*math.Cos(thetaL), wsy+worldArmLen*math.Sin(thetaL))
	set(&f.World, pose.RightWrist, -worldShoulderDX+wx-worldArmLen*math.Cos(thetaR), wsy+worldArmLen*math.Sin(thetaR))
	set(&f.World, pose.LeftHip, worldHipDX+wx, worldHipY+wy)
	set(&f.World, pose.RightHip, -worldHipDX+wx, worldHipY+wy)

	// Ankles: the support foot stays planted; the raised foot follows
	// the body once it lifts, and drops back on an injected touchdown.
	raised := g.cfg.Leg.RaisedAnkle()
	support := g.cfg.Leg.SupportAnkle()
	for _, side := range []struct {
		joint pose.Joint
		sign  float64
	}{
		{pose.LeftAnkle, 1},
		{pose.RightAnkle, -1},
	} {
		nx := 0.5 + side.sign*normAnkleDX
		ny := normAnkleY
		wxk := side.sign * worldAnkleDX
		wyk := worldAnkleY

		if side.joint == raised && lifted && !touchdown {
			nx += offX
			ny = normAnkleY - normLiftRise + offY
			wxk += wx
			wyk = worldAnkleY - worldLiftRise + wy
		}
		if side.joint == support && slid {
			nx += slideOffsetNorm
			wxk += slideOffsetNorm * worldPerNorm
		}

		set(&f.Norm, side.joint, nx, ny)
		set(&f.World, side.joint, wxk, wyk)
	}

	return f
}
