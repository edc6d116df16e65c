// Package ltad maps hold durations onto the Long-Term Athlete
// Development 1-5 banding and compares a band against what the
// athlete's age predicts.
package ltad

// Band is one step of the LTAD duration scale.
type Band struct {
	Score int
	Label string
}

// DurationScore bands a hold duration in seconds. Band boundaries sit
// at 10, 15, 20 and 25 seconds; anything past 25 is Advanced.
func DurationScore(holdSeconds float64) Band {
	switch {
	case holdSeconds < 10:
		return Band{Score: 1, Label: "Beginning"}
	case holdSeconds < 15:
		return Band{Score: 2, Label: "Developing"}
	case holdSeconds < 20:
		return Band{Score: 3, Label: "Competent"}
	case holdSeconds < 25:
		return Band{Score: 4, Label: "Proficient"}
	default:
		return Band{Score: 5, Label: "Advanced"}
	}
}

// Expectation relates an achieved band to the age-expected one.
type Expectation string

const (
	ExpectationBelow   Expectation = "below"
	ExpectationMeets   Expectation = "meets"
	ExpectationAbove   Expectation = "above"
	ExpectationUnknown Expectation = "unknown"
)

// ExpectedScore returns the band an athlete of the given age is
// expected to reach. The development table covers ages 5 through 13.
func ExpectedScore(age int) (int, bool) {
	switch {
	case age >= 5 && age <= 6:
		return 1, true
	case age == 7:
		return 2, true
	case age >= 8 && age <= 9:
		return 3, true
	case age >= 10 && age <= 11:
		return 4, true
	case age >= 12 && age <= 13:
		return 5, true
	default:
		return 0, false
	}
}

// AgeExpectation classifies an achieved score against the age-expected
// one. Ages outside the development table yield ExpectationUnknown.
func AgeExpectation(age, score int) Expectation {
	expected, ok := ExpectedScore(age)
	if !ok {
		return ExpectationUnknown
	}
	switch {
	case score > expected:
		return ExpectationAbove
	case score < expected:
		return ExpectationBelow
	default:
		return ExpectationMeets
	}
}
