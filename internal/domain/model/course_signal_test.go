package model_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtharvaDeo101/KARA/internal/domain/model"
	"github.com/AtharvaDeo101/KARA/internal/domain/valueobject"
)

func validFields() model.SignalFields {
	return model.SignalFields{
		TimeSpentOnCourse:     25.5,
		NumberOfVideosWatched: 15,
		NumberOfQuizzesTaken:  8,
		QuizScores:            85.0,
		CompletionRate:        70.0,
		CourseCategory:        valueobject.CourseCategoryProgramming,
		DeviceType:            valueobject.DeviceTypeDesktop,
	}
}

func TestNewCourseSignal_Valid(t *testing.T) {
	s, err := model.NewCourseSignal(validFields())
	require.NoError(t, err)

	assert.Equal(t, 25.5, s.TimeSpentOnCourse())
	assert.Equal(t, 15, s.NumberOfVideosWatched())
	assert.Equal(t, 8, s.NumberOfQuizzesTaken())
	assert.Equal(t, 85.0, s.QuizScores())
	assert.Equal(t, 70.0, s.CompletionRate())
	assert.Equal(t, "Programming", s.CourseCategory().String())
	assert.Equal(t, "Desktop", s.DeviceType().String())
	assert.Equal(t, validFields(), s.Fields())
}

func TestNewCourseSignal_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *model.SignalFields)
		wantErr bool
	}{
		{"zero counts", func(f *model.SignalFields) { f.NumberOfVideosWatched = 0; f.NumberOfQuizzesTaken = 0 }, false},
		{"zero percentages", func(f *model.SignalFields) { f.QuizScores = 0; f.CompletionRate = 0 }, false},
		{"full percentages", func(f *model.SignalFields) { f.QuizScores = 100; f.CompletionRate = 100 }, false},
		{"tiny time spent", func(f *model.SignalFields) { f.TimeSpentOnCourse = 0.0001 }, false},
		{"zero time spent", func(f *model.SignalFields) { f.TimeSpentOnCourse = 0 }, true},
		{"negative time spent", func(f *model.SignalFields) { f.TimeSpentOnCourse = -1 }, true},
		{"NaN time spent", func(f *model.SignalFields) { f.TimeSpentOnCourse = math.NaN() }, true},
		{"infinite time spent", func(f *model.SignalFields) { f.TimeSpentOnCourse = math.Inf(1) }, true},
		{"negative videos", func(f *model.SignalFields) { f.NumberOfVideosWatched = -1 }, true},
		{"negative quizzes", func(f *model.SignalFields) { f.NumberOfQuizzesTaken = -1 }, true},
		{"quiz score over 100", func(f *model.SignalFields) { f.QuizScores = 100.01 }, true},
		{"negative completion rate", func(f *model.SignalFields) { f.CompletionRate = -0.1 }, true},
		{"NaN completion rate", func(f *model.SignalFields) { f.CompletionRate = math.NaN() }, true},
		{"missing category", func(f *model.SignalFields) { f.CourseCategory = valueobject.CourseCategory{} }, true},
		{"missing device", func(f *model.SignalFields) { f.DeviceType = valueobject.DeviceType{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.mutate(&f)
			_, err := model.NewCourseSignal(f)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Len(t, verr.Violations, 1)
		})
	}
}

func TestNewCourseSignal_ReportsAllViolationsInColumnOrder(t *testing.T) {
	f := validFields()
	f.DeviceType = valueobject.DeviceType{}
	f.QuizScores = 105
	f.TimeSpentOnCourse = 0

	_, err := model.NewCourseSignal(f)

	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"TimeSpentOnCourse", "QuizScores", "DeviceType"}, verr.Fields())
	assert.Contains(t, err.Error(), "QuizScores: must be between 0 and 100")
}

func TestCourseSignal_Row(t *testing.T) {
	s, err := model.NewCourseSignal(validFields())
	require.NoError(t, err)

	row := s.Row()
	assert.Equal(t, [5]float64{25.5, 15, 8, 85, 70}, row.Numeric)
	assert.Equal(t, [2]string{"Programming", "Desktop"}, row.Categorical)
}

func TestFeatureColumns_Layout(t *testing.T) {
	assert.Equal(t, [7]string{
		"TimeSpentOnCourse",
		"NumberOfVideosWatched",
		"NumberOfQuizzesTaken",
		"QuizScores",
		"CompletionRate",
		"CourseCategory",
		"DeviceType",
	}, model.FeatureColumns)
}

func TestPredictionExecutionError_Unwrap(t *testing.T) {
	cause := errors.New("shape mismatch")
	err := error(&model.PredictionExecutionError{Cause: cause})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "prediction failed: shape mismatch", err.Error())
}

func TestUpstreamError_Message(t *testing.T) {
	assert.Equal(t, "chat upstream error (status 503): overloaded",
		(&model.UpstreamError{StatusCode: 503, Message: "overloaded"}).Error())

	cause := errors.New("connection refused")
	err := &model.UpstreamError{Err: cause}
	assert.ErrorIs(t, err, cause)
}
