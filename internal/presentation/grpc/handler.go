package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/AtharvaDeo101/KARA/internal/application/usecase"
	"github.com/AtharvaDeo101/KARA/internal/domain/model"
)

// Compile-time assertion that PredictionHandler implements PredictionServiceServer.
var _ PredictionServiceServer = (*PredictionHandler)(nil)

// PredictionHandler implements the gRPC PredictionServiceServer interface.
type PredictionHandler struct {
	UnimplementedPredictionServiceServer
	predict *usecase.PredictCompletion
	logger  *slog.Logger
}

// NewPredictionHandler creates a new gRPC handler.
func NewPredictionHandler(predict *usecase.PredictCompletion, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{predict: predict, logger: logger}
}

// Predict scores one learner-course record.
func (h *PredictionHandler) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	if req == nil || req.Input == nil {
		return nil, status.Error(codes.InvalidArgument, "input is required")
	}

	resp, err := h.predict.Execute(ctx, req.Input)
	if err != nil {
		h.logger.WarnContext(ctx, "grpc prediction failed", "error", err)
		return nil, toStatus(err)
	}

	return &PredictResponse{Prediction: resp}, nil
}

// toStatus maps the domain error taxonomy onto gRPC status codes.
func toStatus(err error) error {
	var (
		verr *model.ValidationError
		perr *model.PredictionExecutionError
	)

	switch {
	case errors.As(err, &verr):
		st := status.New(codes.InvalidArgument, verr.Error())
		br := &errdetails.BadRequest{}
		for _, v := range verr.Violations {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       v.Field,
				Description: v.Message,
			})
		}
		if withDetails, derr := st.WithDetails(br); derr == nil {
			st = withDetails
		}
		return st.Err()
	case errors.Is(err, model.ErrModelUnavailable):
		return status.Error(codes.Unavailable, model.ErrModelUnavailable.Error())
	case errors.As(err, &perr):
		return status.Error(codes.InvalidArgument, perr.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
