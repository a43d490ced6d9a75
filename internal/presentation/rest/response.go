package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/AtharvaDeo101/KARA/internal/application/dto"
	"github.com/AtharvaDeo101/KARA/internal/domain/model"
)

// MaxBodyBytes caps every request body.
const MaxBodyBytes = 1 << 20

// errMalformedBody marks a body that is not a single JSON value of the expected shape.
var errMalformedBody = errors.New("malformed JSON body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

// readJSON decodes exactly one JSON value from the body. Numbers are kept as
// json.Number so integer fields are not silently rounded.
func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON value", errMalformedBody)
	}
	return nil
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		verr *model.ValidationError
		perr *model.PredictionExecutionError
		uerr *model.UpstreamError
	)

	switch {
	case errors.Is(err, errMalformedBody):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:   "validation failed",
			Details: verr.Violations,
		})
	case errors.Is(err, model.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, model.ErrModelUnavailable.Error())
	case errors.As(err, &perr):
		writeError(w, http.StatusUnprocessableEntity, perr.Error())
	case errors.Is(err, model.ErrChatNotConfigured):
		writeError(w, http.StatusInternalServerError, "Gemini API key not configured. Please set GEMINI_API_KEY in your .env file.")
	case errors.Is(err, model.ErrUpstreamTimeout):
		writeError(w, http.StatusGatewayTimeout, "Request to Gemini API timed out.")
	case errors.As(err, &uerr):
		writeError(w, http.StatusBadGateway, uerr.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
