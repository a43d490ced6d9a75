package model

import (
	"math"

	"github.com/AtharvaDeo101/KARA/internal/domain/valueobject"
)

// Column names of the classifier's training schema, in training order.
const (
	ColumnTimeSpentOnCourse     = "TimeSpentOnCourse"
	ColumnNumberOfVideosWatched = "NumberOfVideosWatched"
	ColumnNumberOfQuizzesTaken  = "NumberOfQuizzesTaken"
	ColumnQuizScores            = "QuizScores"
	ColumnCompletionRate        = "CompletionRate"
	ColumnCourseCategory        = "CourseCategory"
	ColumnDeviceType            = "DeviceType"
)

// FeatureColumns is the exact column layout every artifact must be trained on.
var FeatureColumns = [7]string{
	ColumnTimeSpentOnCourse,
	ColumnNumberOfVideosWatched,
	ColumnNumberOfQuizzesTaken,
	ColumnQuizScores,
	ColumnCompletionRate,
	ColumnCourseCategory,
	ColumnDeviceType,
}

// NumericColumns and CategoricalColumns split FeatureColumns by kind, keeping order.
var (
	NumericColumns = [5]string{
		ColumnTimeSpentOnCourse,
		ColumnNumberOfVideosWatched,
		ColumnNumberOfQuizzesTaken,
		ColumnQuizScores,
		ColumnCompletionRate,
	}
	CategoricalColumns = [2]string{ColumnCourseCategory, ColumnDeviceType}
)

// Percentage bounds shared by QuizScores and CompletionRate.
const (
	MinPercentage = 0.0
	MaxPercentage = 100.0
)

// SignalFields holds the raw, typed values of one learner-course observation.
type SignalFields struct {
	TimeSpentOnCourse     float64
	NumberOfVideosWatched int
	NumberOfQuizzesTaken  int
	QuizScores            float64
	CompletionRate        float64
	CourseCategory        valueobject.CourseCategory
	DeviceType            valueobject.DeviceType
}

// CourseSignal is a validated learner-course observation. The zero value is
// not valid; use NewCourseSignal.
type CourseSignal struct {
	fields SignalFields
}

// NewCourseSignal checks every range and enumeration invariant and returns a
// *ValidationError naming all violated fields.
func NewCourseSignal(f SignalFields) (CourseSignal, error) {
	if v := f.Violations(); len(v) > 0 {
		return CourseSignal{}, &ValidationError{Violations: v}
	}
	return CourseSignal{fields: f}, nil
}

// Violations lists the range and enumeration constraints f breaks, in column order.
func (f SignalFields) Violations() []FieldViolation {
	var out []FieldViolation

	if !(f.TimeSpentOnCourse > 0) || math.IsInf(f.TimeSpentOnCourse, 0) {
		out = append(out, FieldViolation{Field: ColumnTimeSpentOnCourse, Message: "must be greater than 0"})
	}
	if f.NumberOfVideosWatched < 0 {
		out = append(out, FieldViolation{Field: ColumnNumberOfVideosWatched, Message: "must be greater than or equal to 0"})
	}
	if f.NumberOfQuizzesTaken < 0 {
		out = append(out, FieldViolation{Field: ColumnNumberOfQuizzesTaken, Message: "must be greater than or equal to 0"})
	}
	if !inPercentRange(f.QuizScores) {
		out = append(out, FieldViolation{Field: ColumnQuizScores, Message: "must be between 0 and 100"})
	}
	if !inPercentRange(f.CompletionRate) {
		out = append(out, FieldViolation{Field: ColumnCompletionRate, Message: "must be between 0 and 100"})
	}
	if f.CourseCategory.IsZero() {
		out = append(out, FieldViolation{Field: ColumnCourseCategory, Message: "must be one of Programming, Business, Design, Marketing, Data Science, Other"})
	}
	if f.DeviceType.IsZero() {
		out = append(out, FieldViolation{Field: ColumnDeviceType, Message: "must be one of Desktop, Mobile, Tablet"})
	}
	return out
}

func inPercentRange(v float64) bool {
	return v >= MinPercentage && v <= MaxPercentage
}

// Fields returns a copy of the signal's values.
func (s CourseSignal) Fields() SignalFields { return s.fields }

func (s CourseSignal) TimeSpentOnCourse() float64                 { return s.fields.TimeSpentOnCourse }
func (s CourseSignal) NumberOfVideosWatched() int                 { return s.fields.NumberOfVideosWatched }
func (s CourseSignal) NumberOfQuizzesTaken() int                  { return s.fields.NumberOfQuizzesTaken }
func (s CourseSignal) QuizScores() float64                        { return s.fields.QuizScores }
func (s CourseSignal) CompletionRate() float64                    { return s.fields.CompletionRate }
func (s CourseSignal) CourseCategory() valueobject.CourseCategory { return s.fields.CourseCategory }
func (s CourseSignal) DeviceType() valueobject.DeviceType         { return s.fields.DeviceType }

// FeatureRow is one tabular row laid out in FeatureColumns order.
type FeatureRow struct {
	Numeric     [5]float64
	Categorical [2]string
}

// Row projects the signal onto the classifier's training schema.
func (s CourseSignal) Row() FeatureRow {
	return FeatureRow{
		Numeric: [5]float64{
			s.fields.TimeSpentOnCourse,
			float64(s.fields.NumberOfVideosWatched),
			float64(s.fields.NumberOfQuizzesTaken),
			s.fields.QuizScores,
			s.fields.CompletionRate,
		},
		Categorical: [2]string{
			s.fields.CourseCategory.String(),
			s.fields.DeviceType.String(),
		},
	}
}
