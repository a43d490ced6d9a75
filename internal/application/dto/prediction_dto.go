package dto

import (
	"github.com/AtharvaDeo101/KARA/internal/domain/model"
)

// CourseSignalDTO echoes a validated course signal using the trained column names.
type CourseSignalDTO struct {
	CourseCategory        string  `json:"CourseCategory"`
	DeviceType            string  `json:"DeviceType"`
	TimeSpentOnCourse     float64 `json:"TimeSpentOnCourse"`
	QuizScores            float64 `json:"QuizScores"`
	CompletionRate        float64 `json:"CompletionRate"`
	NumberOfVideosWatched int     `json:"NumberOfVideosWatched"`
	NumberOfQuizzesTaken  int     `json:"NumberOfQuizzesTaken"`
}

// PredictionResponse is the output DTO of a single completion prediction.
type PredictionResponse struct {
	DropoutRisk           string          `json:"dropout_risk"`
	InputData             CourseSignalDTO `json:"input_data"`
	CompletionProbability float64         `json:"completion_probability"`
	Confidence            float64         `json:"confidence"`
	WillComplete          bool            `json:"will_complete"`
}

// BatchItem is the outcome of one record of a batch prediction. Exactly one
// of Prediction and Error is set.
type BatchItem struct {
	Prediction *PredictionResponse `json:"prediction,omitempty"`
	Error      string              `json:"error,omitempty"`
	Row        int                 `json:"row"`
}

// ErrorResponse is the body returned for rejected requests.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details []model.FieldViolation `json:"details,omitempty"`
}

// SignalFromModel maps a course signal to its wire shape.
func SignalFromModel(s model.CourseSignal) CourseSignalDTO {
	return CourseSignalDTO{
		TimeSpentOnCourse:     s.TimeSpentOnCourse(),
		NumberOfVideosWatched: s.NumberOfVideosWatched(),
		NumberOfQuizzesTaken:  s.NumberOfQuizzesTaken(),
		QuizScores:            s.QuizScores(),
		CompletionRate:        s.CompletionRate(),
		CourseCategory:        s.CourseCategory().String(),
		DeviceType:            s.DeviceType().String(),
	}
}

// FromModel maps a prediction result to the response DTO.
func FromModel(r model.PredictionResult) PredictionResponse {
	return PredictionResponse{
		WillComplete:          r.WillComplete(),
		CompletionProbability: r.CompletionProbability(),
		DropoutRisk:           r.DropoutRisk().String(),
		Confidence:            r.Confidence(),
		InputData:             SignalFromModel(r.Input()),
	}
}
