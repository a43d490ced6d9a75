package service

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/AtharvaDeo101/KARA/internal/domain/model"
	"github.com/AtharvaDeo101/KARA/internal/domain/port"
	"github.com/AtharvaDeo101/KARA/internal/domain/valueobject"
)

// OutputPrecision is the number of decimal places reported for probabilities.
const OutputPrecision = 4

// PredictionEngine scores validated course signals with a trained classifier.
// The classifier is shared read-only, so the engine is safe for concurrent use.
type PredictionEngine struct {
	classifier port.Classifier
}

// NewPredictionEngine creates a PredictionEngine. A nil classifier is allowed;
// every prediction then fails with model.ErrModelUnavailable.
func NewPredictionEngine(classifier port.Classifier) *PredictionEngine {
	return &PredictionEngine{classifier: classifier}
}

// Ready reports whether a classifier is loaded.
func (e *PredictionEngine) Ready() bool {
	return e.classifier != nil
}

// Predict projects the signal onto the training schema, runs the classifier
// and shapes the outcome. The dropout risk band is derived before rounding.
func (e *PredictionEngine) Predict(_ context.Context, signal model.CourseSignal) (model.PredictionResult, error) {
	if e.classifier == nil {
		return model.PredictionResult{}, model.ErrModelUnavailable
	}

	row := signal.Row()

	proba, err := e.classifier.PredictProba(row)
	if err != nil {
		return model.PredictionResult{}, &model.PredictionExecutionError{Cause: err}
	}
	if err := checkProba(proba); err != nil {
		return model.PredictionResult{}, &model.PredictionExecutionError{Cause: err}
	}

	label, err := e.classifier.Predict(row)
	if err != nil {
		return model.PredictionResult{}, &model.PredictionExecutionError{Cause: err}
	}
	if label != 0 && label != 1 {
		return model.PredictionResult{}, &model.PredictionExecutionError{
			Cause: fmt.Errorf("unexpected class label %d", label),
		}
	}

	completion := proba[1]
	risk := valueobject.DropoutRiskFromProbability(completion)

	confidence := proba[0]
	for _, p := range proba[1:] {
		confidence = math.Max(confidence, p)
	}

	return model.NewPredictionResult(
		signal,
		label == 1,
		Round(completion),
		risk,
		Round(confidence),
	), nil
}

func checkProba(proba []float64) error {
	if len(proba) < 2 {
		return fmt.Errorf("probability vector has %d entries, want at least 2", len(proba))
	}
	for i, p := range proba {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("probability %d out of range: %v", i, p)
		}
	}
	return nil
}

// Round rounds v to OutputPrecision places, half away from zero.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(OutputPrecision).InexactFloat64()
}
