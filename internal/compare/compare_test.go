package compare

import "testing"

func TestCompareIdenticalLegs(t *testing.T) {
	in := Input{
		HoldSeconds:  20,
		SwayVelocity: 2.1,
		ArmLeftDeg:   12,
		ArmRightDeg:  14,
		Corrections:  2,
	}

	got := Compare(in, in)
	if got.DominantLeg != DominanceBalanced {
		t.Errorf("DominantLeg = %q, want balanced", got.DominantLeg)
	}
	if got.DurationDiff != 0 || got.DurationDiffPct != 0 {
		t.Errorf("duration diff = %v (%v%%), want 0", got.DurationDiff, got.DurationDiffPct)
	}
	if got.SwaySymmetry != 1.0 {
		t.Errorf("SwaySymmetry = %v, want 1.0", got.SwaySymmetry)
	}
	if got.OverallSymmetry != 100.0 {
		t.Errorf("OverallSymmetry = %v, want 100", got.OverallSymmetry)
	}
	if got.Assessment != AssessmentExcellent {
		t.Errorf("Assessment = %q, want excellent", got.Assessment)
	}
}

func TestCompareDominantLeg(t *testing.T) {
	tests := []struct {
		name      string
		leftHold  float64
		rightHold float64
		want      Dominance
		wantPct   float64
	}{
		{"left much longer", 25, 18, DominanceLeft, 28.0},
		{"right much longer", 12, 24, DominanceRight, 50.0},
		{"within balanced margin", 20, 17, DominanceBalanced, 15.0},
		{"exactly at margin", 20, 16, DominanceLeft, 20.0},
		{"both zero holds", 0, 0, DominanceBalanced, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(Input{HoldSeconds: tt.leftHold}, Input{HoldSeconds: tt.rightHold})
			if got.DominantLeg != tt.want {
				t.Errorf("DominantLeg = %q, want %q", got.DominantLeg, tt.want)
			}
			if got.DurationDiffPct != tt.wantPct {
				t.Errorf("DurationDiffPct = %v, want %v", got.DurationDiffPct, tt.wantPct)
			}
		})
	}
}

func TestCompareSwaySymmetry(t *testing.T) {
	left := Input{HoldSeconds: 20, SwayVelocity: 3.0}
	right := Input{HoldSeconds: 20, SwayVelocity: 1.0}

	got := Compare(left, right)
	// Difference equals the mean, so the ratio floors at zero.
	if got.SwaySymmetry != 0 {
		t.Errorf("SwaySymmetry = %v, want 0", got.SwaySymmetry)
	}
	if got.SwayDiff != 2.0 {
		t.Errorf("SwayDiff = %v, want 2.0", got.SwayDiff)
	}
	// 100*0.5 + 0*0.3 + 100*0.1 + 100*0.1
	if got.OverallSymmetry != 70.0 {
		t.Errorf("OverallSymmetry = %v, want 70", got.OverallSymmetry)
	}
	if got.Assessment != AssessmentGood {
		t.Errorf("Assessment = %q, want good", got.Assessment)
	}
}

func TestCompareSwaySymmetryZeroVelocities(t *testing.T) {
	got := Compare(Input{HoldSeconds: 10}, Input{HoldSeconds: 10})
	if got.SwaySymmetry != 1.0 {
		t.Errorf("SwaySymmetry with no sway = %v, want 1.0", got.SwaySymmetry)
	}
}

func TestCompareArmComponent(t *testing.T) {
	// Per-trial arm means of 30 and 50 degrees differ by more than the
	// 15 degree span, flooring the arm component.
	left := Input{HoldSeconds: 20, ArmLeftDeg: 25, ArmRightDeg: 35}
	right := Input{HoldSeconds: 20, ArmLeftDeg: 45, ArmRightDeg: 55}

	got := Compare(left, right)
	if got.ArmAngleDiff != 20.0 {
		t.Errorf("ArmAngleDiff = %v, want 20", got.ArmAngleDiff)
	}
	// 100*0.5 + 100*0.3 + 0*0.1 + 100*0.1
	if got.OverallSymmetry != 90.0 {
		t.Errorf("OverallSymmetry = %v, want 90", got.OverallSymmetry)
	}
}

func TestCompareCorrectionsSigned(t *testing.T) {
	left := Input{HoldSeconds: 20, Corrections: 2}
	right := Input{HoldSeconds: 20, Corrections: 6}

	got := Compare(left, right)
	if got.CorrectionsDiff != -4 {
		t.Errorf("CorrectionsDiff = %d, want -4", got.CorrectionsDiff)
	}
	// Corrections component: 100 - 4/5*100 = 20.
	// 100*0.5 + 100*0.3 + 100*0.1 + 20*0.1
	if got.OverallSymmetry != 92.0 {
		t.Errorf("OverallSymmetry = %v, want 92", got.OverallSymmetry)
	}
}

func TestComparePoorSymmetry(t *testing.T) {
	left := Input{HoldSeconds: 10, SwayVelocity: 2, ArmLeftDeg: 30, ArmRightDeg: 30, Corrections: 6}
	right := Input{HoldSeconds: 0, SwayVelocity: 0, ArmLeftDeg: 50, ArmRightDeg: 50, Corrections: 0}

	got := Compare(left, right)
	if got.DominantLeg != DominanceLeft {
		t.Errorf("DominantLeg = %q, want left", got.DominantLeg)
	}
	if got.OverallSymmetry != 0.0 {
		t.Errorf("OverallSymmetry = %v, want 0", got.OverallSymmetry)
	}
	if got.Assessment != AssessmentPoor {
		t.Errorf("Assessment = %q, want poor", got.Assessment)
	}
}
