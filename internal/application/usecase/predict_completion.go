package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AtharvaDeo101/KARA/internal/application/dto"
	"github.com/AtharvaDeo101/KARA/internal/domain/model"
	"github.com/AtharvaDeo101/KARA/internal/domain/port"
	"github.com/AtharvaDeo101/KARA/internal/domain/service"
)

const tracerName = "github.com/AtharvaDeo101/KARA/internal/application/usecase"

// Failure kinds reported to the PredictionObserver.
const (
	FailureValidation       = "validation"
	FailureModelUnavailable = "model_unavailable"
	FailureExecution        = "execution"
	FailureInternal         = "internal"
)

// FailureKind classifies a prediction error.
func FailureKind(err error) string {
	var verr *model.ValidationError
	var perr *model.PredictionExecutionError
	switch {
	case errors.As(err, &verr):
		return FailureValidation
	case errors.Is(err, model.ErrModelUnavailable):
		return FailureModelUnavailable
	case errors.As(err, &perr):
		return FailureExecution
	default:
		return FailureInternal
	}
}

// PredictCompletion is the use case for scoring one untrusted course record.
type PredictCompletion struct {
	validator *service.Validator
	engine    *service.PredictionEngine
	observer  port.PredictionObserver
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewPredictCompletion creates a new PredictCompletion use case. observer may be nil.
func NewPredictCompletion(
	validator *service.Validator,
	engine *service.PredictionEngine,
	observer port.PredictionObserver,
	logger *slog.Logger,
) *PredictCompletion {
	if observer == nil {
		observer = noopObserver{}
	}
	return &PredictCompletion{
		validator: validator,
		engine:    engine,
		observer:  observer,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
}

// Ready reports whether a classifier is loaded.
func (uc *PredictCompletion) Ready() bool {
	return uc.engine.Ready()
}

// Execute validates the record, runs the prediction engine and shapes the response.
func (uc *PredictCompletion) Execute(ctx context.Context, raw map[string]any) (dto.PredictionResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "PredictCompletion.Execute")
	defer span.End()

	start := time.Now()

	signal, err := uc.validator.Validate(raw)
	if err != nil {
		uc.fail(ctx, span, err)
		return dto.PredictionResponse{}, fmt.Errorf("failed to validate course signal: %w", err)
	}

	result, err := uc.engine.Predict(ctx, signal)
	if err != nil {
		uc.fail(ctx, span, err)
		return dto.PredictionResponse{}, fmt.Errorf("failed to predict completion: %w", err)
	}

	elapsed := time.Since(start)
	uc.observer.ObservePrediction(ctx, result, elapsed)

	span.SetAttributes(
		attribute.Bool("kara.will_complete", result.WillComplete()),
		attribute.Float64("kara.completion_probability", result.CompletionProbability()),
		attribute.String("kara.dropout_risk", result.DropoutRisk().String()),
	)

	uc.logger.DebugContext(ctx, "prediction completed",
		"dropout_risk", result.DropoutRisk().String(),
		"completion_probability", result.CompletionProbability(),
		"duration_ms", elapsed.Milliseconds(),
	)

	return dto.FromModel(result), nil
}

func (uc *PredictCompletion) fail(ctx context.Context, span trace.Span, err error) {
	kind := FailureKind(err)
	uc.observer.ObserveFailure(ctx, kind)

	span.RecordError(err)
	span.SetStatus(codes.Error, kind)
	span.SetAttributes(attribute.String("kara.failure", kind))

	if kind == FailureValidation {
		uc.logger.DebugContext(ctx, "prediction rejected", "error", err)
		return
	}
	uc.logger.WarnContext(ctx, "prediction failed", "kind", kind, "error", err)
}

type noopObserver struct{}

func (noopObserver) ObservePrediction(context.Context, model.PredictionResult, time.Duration) {}
func (noopObserver) ObserveFailure(context.Context, string)                                   {}
