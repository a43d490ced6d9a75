package valueobject

import "fmt"

// Completion probability band boundaries. Each band includes its lower bound.
const (
	MediumRiskFloor = 0.40
	LowRiskFloor    = 0.70
)

// DropoutRisk is an immutable value object representing how likely a learner is
// to abandon a course.
type DropoutRisk struct {
	value string
}

var (
	DropoutRiskLow    = DropoutRisk{value: "Low"}
	DropoutRiskMedium = DropoutRisk{value: "Medium"}
	DropoutRiskHigh   = DropoutRisk{value: "High"}
)

// DropoutRiskFromString reconstructs a DropoutRisk from its string representation.
func DropoutRiskFromString(s string) (DropoutRisk, error) {
	switch s {
	case "Low":
		return DropoutRiskLow, nil
	case "Medium":
		return DropoutRiskMedium, nil
	case "High":
		return DropoutRiskHigh, nil
	default:
		return DropoutRisk{}, fmt.Errorf("invalid dropout risk: %s", s)
	}
}

// DropoutRiskFromProbability derives the risk band from the probability that the
// learner completes the course:
//
//	p < 0.40        High
//	0.40 <= p < 0.70 Medium
//	p >= 0.70       Low
//
// Callers must pass the unrounded probability.
func DropoutRiskFromProbability(p float64) DropoutRisk {
	switch {
	case p < MediumRiskFloor:
		return DropoutRiskHigh
	case p < LowRiskFloor:
		return DropoutRiskMedium
	default:
		return DropoutRiskLow
	}
}

// String returns the string representation.
func (r DropoutRisk) String() string {
	return r.value
}

// IsZero returns true if the DropoutRisk has not been set.
func (r DropoutRisk) IsZero() bool {
	return r.value == ""
}

// Equal checks equality with another DropoutRisk.
func (r DropoutRisk) Equal(other DropoutRisk) bool {
	return r.value == other.value
}
