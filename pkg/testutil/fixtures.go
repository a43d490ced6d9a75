package testutil

import (
	"sync/atomic"

	"github.com/AtharvaDeo101/KARA/internal/domain/model"
)

// ValidRawSignal returns a fresh, valid untrusted record as decoded from JSON.
func ValidRawSignal() map[string]any {
	return map[string]any{
		"TimeSpentOnCourse":     25.5,
		"NumberOfVideosWatched": 15.0,
		"NumberOfQuizzesTaken":  8.0,
		"QuizScores":            85.0,
		"CompletionRate":        70.0,
		"CourseCategory":        "Programming",
		"DeviceType":            "Desktop",
	}
}

// ValidRawSignalJSON is ValidRawSignal encoded as a request body.
const ValidRawSignalJSON = `{"TimeSpentOnCourse":25.5,"NumberOfVideosWatched":15,"NumberOfQuizzesTaken":8,` +
	`"QuizScores":85,"CompletionRate":70,"CourseCategory":"Programming","DeviceType":"Desktop"}`

// StubClassifier returns a fixed probability vector and label. It counts
// calls so tests can assert the classifier was never consulted.
type StubClassifier struct {
	Proba []float64
	Label int
	Err   error
	calls atomic.Int64
}

// NewStubClassifier derives the label from the class-1 probability.
func NewStubClassifier(completion float64) *StubClassifier {
	label := 0
	if completion > 0.5 {
		label = 1
	}
	return &StubClassifier{Proba: []float64{1 - completion, completion}, Label: label}
}

func (s *StubClassifier) Predict(model.FeatureRow) (int, error) {
	s.calls.Add(1)
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Label, nil
}

func (s *StubClassifier) PredictProba(model.FeatureRow) ([]float64, error) {
	s.calls.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]float64, len(s.Proba))
	copy(out, s.Proba)
	return out, nil
}

// Calls returns how many times the classifier was invoked.
func (s *StubClassifier) Calls() int64 {
	return s.calls.Load()
}
