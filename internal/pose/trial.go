package pose

import (
	"fmt"
	"time"
)

// Leg names the leg under test, which is the support leg; the opposite
// leg is raised for the duration of the hold.
type Leg string

const (
	LegLeft  Leg = "left"
	LegRight Leg = "right"
)

// Valid reports whether l is a recognised leg.
func (l Leg) Valid() bool {
	return l == LegLeft || l == LegRight
}

// Opposite returns the other leg.
func (l Leg) Opposite() Leg {
	if l == LegRight {
		return LegLeft
	}
	return LegRight
}

// SupportAnkle returns the ankle joint of the leg being stood on.
func (l Leg) SupportAnkle() Joint {
	if l == LegRight {
		return RightAnkle
	}
	return LeftAnkle
}

// RaisedAnkle returns the ankle joint of the lifted leg.
func (l Leg) RaisedAnkle() Joint {
	if l == LegRight {
		return LeftAnkle
	}
	return RightAnkle
}

// TrialConfig carries the per-trial inputs. AthleteRef is an opaque
// caller-supplied identifier; this module does not manage athletes.
type TrialConfig struct {
	LegTested       Leg
	AthleteRef      string
	AthleteAge      int
	NominalDuration time.Duration
}

// DefaultTrialConfig returns a config for a standard 20 second hold on
// the left leg.
func DefaultTrialConfig() TrialConfig {
	return TrialConfig{
		LegTested:       LegLeft,
		NominalDuration: 20 * time.Second,
	}
}

// Validate checks the config for values the engine cannot work with.
func (c TrialConfig) Validate() error {
	if !c.LegTested.Valid() {
		return fmt.Errorf("invalid leg %q", c.LegTested)
	}
	if c.NominalDuration <= 0 {
		return fmt.Errorf("nominal duration must be positive, got %v", c.NominalDuration)
	}
	return nil
}
