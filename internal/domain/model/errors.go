package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrModelUnavailable is returned for every prediction attempted while no
// classifier artifact is loaded.
var ErrModelUnavailable = errors.New("prediction model is not available")

// FieldViolation describes one field that failed a presence, type, range or
// enumeration constraint.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated field of a rejected course signal.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "invalid course signal: " + strings.Join(parts, "; ")
}

// Fields returns the names of the violated fields in report order.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Field)
	}
	return out
}

// PredictionExecutionError wraps a failure raised by the classifier while
// scoring an already validated row. It almost always means the row did not
// match the artifact's schema.
type PredictionExecutionError struct {
	Cause error
}

func (e *PredictionExecutionError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Cause)
}

func (e *PredictionExecutionError) Unwrap() error {
	return e.Cause
}
