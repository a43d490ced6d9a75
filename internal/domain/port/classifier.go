package port

import (
	"context"
	"time"

	"github.com/AtharvaDeo101/KARA/internal/domain/model"
)

// Classifier is a trained binary completion classifier. Class 1 means the
// learner completes the course.
type Classifier interface {
	// Predict returns the predicted class label for the row.
	Predict(row model.FeatureRow) (int, error)

	// PredictProba returns [P(class 0), P(class 1)] for the row.
	PredictProba(row model.FeatureRow) ([]float64, error)
}

// ChatCompleter relays an assembled prompt to a generative language model.
type ChatCompleter interface {
	// Complete returns the model's reply text.
	Complete(ctx context.Context, prompt model.ChatPrompt) (string, error)

	// Configured reports whether an API credential is available.
	Configured() bool
}

// PredictionObserver receives prediction outcomes for telemetry.
type PredictionObserver interface {
	// ObservePrediction records a successful prediction.
	ObservePrediction(ctx context.Context, result model.PredictionResult, elapsed time.Duration)

	// ObserveFailure records a rejected or failed prediction by kind.
	ObserveFailure(ctx context.Context, kind string)
}
