package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AtharvaDeo101/KARA/internal/domain/model"
)

const meterName = "github.com/AtharvaDeo101/KARA/internal/infrastructure/telemetry"

// PredictionMetrics records prediction outcomes as OpenTelemetry instruments.
// It implements port.PredictionObserver.
type PredictionMetrics struct {
	predictions metric.Int64Counter
	failures    metric.Int64Counter
	latency     metric.Float64Histogram
	probability metric.Float64Histogram
}

// NewPredictionMetrics creates the instruments on the given provider.
func NewPredictionMetrics(provider metric.MeterProvider) (*PredictionMetrics, error) {
	meter := provider.Meter(meterName)

	predictions, err := meter.Int64Counter("kara_predictions",
		metric.WithDescription("Successful completion predictions by dropout risk band"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create predictions counter: %w", err)
	}

	failures, err := meter.Int64Counter("kara_prediction_failures",
		metric.WithDescription("Rejected or failed predictions by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create failures counter: %w", err)
	}

	latency, err := meter.Float64Histogram("kara_prediction_duration_seconds",
		metric.WithDescription("Time spent validating and scoring one record"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create latency histogram: %w", err)
	}

	probability, err := meter.Float64Histogram("kara_completion_probability",
		metric.WithDescription("Distribution of predicted completion probabilities"),
		metric.WithExplicitBucketBoundaries(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create probability histogram: %w", err)
	}

	return &PredictionMetrics{
		predictions: predictions,
		failures:    failures,
		latency:     latency,
		probability: probability,
	}, nil
}

func (m *PredictionMetrics) ObservePrediction(ctx context.Context, result model.PredictionResult, elapsed time.Duration) {
	risk := metric.WithAttributes(attribute.String("dropout_risk", result.DropoutRisk().String()))
	m.predictions.Add(ctx, 1, risk)
	m.latency.Record(ctx, elapsed.Seconds())
	m.probability.Record(ctx, result.CompletionProbability(), risk)
}

func (m *PredictionMetrics) ObserveFailure(ctx context.Context, kind string) {
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
