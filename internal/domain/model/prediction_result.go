package model

import "github.com/AtharvaDeo101/KARA/internal/domain/valueobject"

// PredictionResult is the immutable outcome of scoring one CourseSignal.
type PredictionResult struct {
	input                 CourseSignal
	dropoutRisk           valueobject.DropoutRisk
	completionProbability float64
	confidence            float64
	willComplete          bool
}

// NewPredictionResult assembles a result. Probabilities are expected to be
// rounded already; risk must have been derived from the unrounded probability.
func NewPredictionResult(
	input CourseSignal,
	willComplete bool,
	completionProbability float64,
	risk valueobject.DropoutRisk,
	confidence float64,
) PredictionResult {
	return PredictionResult{
		input:                 input,
		willComplete:          willComplete,
		completionProbability: completionProbability,
		dropoutRisk:           risk,
		confidence:            confidence,
	}
}

func (r PredictionResult) Input() CourseSignal                  { return r.input }
func (r PredictionResult) WillComplete() bool                   { return r.willComplete }
func (r PredictionResult) CompletionProbability() float64       { return r.completionProbability }
func (r PredictionResult) DropoutRisk() valueobject.DropoutRisk { return r.dropoutRisk }
func (r PredictionResult) Confidence() float64                  { return r.confidence }
