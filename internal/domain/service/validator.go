package service

import (
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/AtharvaDeo101/KARA/internal/domain/model"
	"github.com/AtharvaDeo101/KARA/internal/domain/valueobject"
)

var (
	errRequired   = errors.New("field required")
	errNotNumber  = errors.New("must be a number")
	errNotInteger = errors.New("must be an integer")
	errNotString  = errors.New("must be a string")
)

// Validator turns an untrusted record into a CourseSignal. It holds no state
// and is safe for concurrent use.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks presence, type, range and enumeration membership of all
// seven fields. Keys outside the schema are ignored. On failure the returned
// error is a *model.ValidationError listing every violated field in column
// order.
func (v *Validator) Validate(raw map[string]any) (model.CourseSignal, error) {
	var (
		fields     model.SignalFields
		violations []model.FieldViolation
		failed     = make(map[string]bool)
	)

	reject := func(field string, err error) {
		failed[field] = true
		violations = append(violations, model.FieldViolation{Field: field, Message: err.Error()})
	}

	if f, err := floatField(raw, model.ColumnTimeSpentOnCourse); err != nil {
		reject(model.ColumnTimeSpentOnCourse, err)
	} else {
		fields.TimeSpentOnCourse = f
	}
	if n, err := intField(raw, model.ColumnNumberOfVideosWatched); err != nil {
		reject(model.ColumnNumberOfVideosWatched, err)
	} else {
		fields.NumberOfVideosWatched = n
	}
	if n, err := intField(raw, model.ColumnNumberOfQuizzesTaken); err != nil {
		reject(model.ColumnNumberOfQuizzesTaken, err)
	} else {
		fields.NumberOfQuizzesTaken = n
	}
	if f, err := floatField(raw, model.ColumnQuizScores); err != nil {
		reject(model.ColumnQuizScores, err)
	} else {
		fields.QuizScores = f
	}
	if f, err := floatField(raw, model.ColumnCompletionRate); err != nil {
		reject(model.ColumnCompletionRate, err)
	} else {
		fields.CompletionRate = f
	}
	if s, err := stringField(raw, model.ColumnCourseCategory); err != nil {
		reject(model.ColumnCourseCategory, err)
	} else if c, err := valueobject.CourseCategoryFromString(s); err != nil {
		reject(model.ColumnCourseCategory, errors.New("must be one of Programming, Business, Design, Marketing, Data Science, Other"))
	} else {
		fields.CourseCategory = c
	}
	if s, err := stringField(raw, model.ColumnDeviceType); err != nil {
		reject(model.ColumnDeviceType, err)
	} else if d, err := valueobject.DeviceTypeFromString(s); err != nil {
		reject(model.ColumnDeviceType, errors.New("must be one of Desktop, Mobile, Tablet"))
	} else {
		fields.DeviceType = d
	}

	// Range checks only apply to fields that were successfully coerced.
	for _, fv := range fields.Violations() {
		if !failed[fv.Field] {
			violations = append(violations, fv)
		}
	}

	if len(violations) > 0 {
		sortByColumn(violations)
		return model.CourseSignal{}, &model.ValidationError{Violations: violations}
	}

	return model.NewCourseSignal(fields)
}

func sortByColumn(violations []model.FieldViolation) {
	index := make(map[string]int, len(model.FeatureColumns))
	for i, c := range model.FeatureColumns {
		index[c] = i
	}
	sort.SliceStable(violations, func(i, j int) bool {
		return index[violations[i].Field] < index[violations[j].Field]
	})
}

func floatField(raw map[string]any, key string) (float64, error) {
	v, ok := raw[key]
	if !ok {
		return 0, errRequired
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumber
	}
	return f, nil
}

func intField(raw map[string]any, key string) (int, error) {
	f, err := floatField(raw, key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, errNotInteger
	}
	return int(f), nil
}

func stringField(raw map[string]any, key string) (string, error) {
	v, ok := raw[key]
	if !ok {
		return "", errRequired
	}
	s, ok := v.(string)
	if !ok {
		return "", errNotString
	}
	return s, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, errNotNumber
		}
		return f, nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, errNotNumber
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errNotNumber
		}
		return f, nil
	default:
		// bool, nil, objects and arrays are never numbers.
		return 0, errNotNumber
	}
}
