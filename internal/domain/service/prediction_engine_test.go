package service_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtharvaDeo101/KARA/internal/domain/model"
	"github.com/AtharvaDeo101/KARA/internal/domain/service"
)

type mockClassifier struct {
	predictFn      func(row model.FeatureRow) (int, error)
	predictProbaFn func(row model.FeatureRow) ([]float64, error)
	rows           []model.FeatureRow
}

func (m *mockClassifier) Predict(row model.FeatureRow) (int, error) {
	m.rows = append(m.rows, row)
	if m.predictFn != nil {
		return m.predictFn(row)
	}
	return 1, nil
}

func (m *mockClassifier) PredictProba(row model.FeatureRow) ([]float64, error) {
	m.rows = append(m.rows, row)
	if m.predictProbaFn != nil {
		return m.predictProbaFn(row)
	}
	return []float64{0.5, 0.5}, nil
}

func fixedClassifier(label int, proba ...float64) *mockClassifier {
	return &mockClassifier{
		predictFn:      func(model.FeatureRow) (int, error) { return label, nil },
		predictProbaFn: func(model.FeatureRow) ([]float64, error) { return proba, nil },
	}
}

func validSignal(t *testing.T) model.CourseSignal {
	t.Helper()
	s, err := service.NewValidator().Validate(validRaw())
	require.NoError(t, err)
	return s
}

func TestPredictionEngine_HighCompletion(t *testing.T) {
	clf := fixedClassifier(1, 0.18, 0.82)
	engine := service.NewPredictionEngine(clf)

	result, err := engine.Predict(context.Background(), validSignal(t))
	require.NoError(t, err)

	assert.True(t, result.WillComplete())
	assert.Equal(t, 0.82, result.CompletionProbability())
	assert.Equal(t, "Low", result.DropoutRisk().String())
	assert.Equal(t, 0.82, result.Confidence())
	assert.Equal(t, validSignal(t), result.Input())
}

func TestPredictionEngine_LowCompletion(t *testing.T) {
	engine := service.NewPredictionEngine(fixedClassifier(0, 0.65, 0.35))

	result, err := engine.Predict(context.Background(), validSignal(t))
	require.NoError(t, err)

	assert.False(t, result.WillComplete())
	assert.Equal(t, 0.35, result.CompletionProbability())
	assert.Equal(t, "High", result.DropoutRisk().String())
	assert.Equal(t, 0.65, result.Confidence())
}

func TestPredictionEngine_RiskBands(t *testing.T) {
	tests := []struct {
		p        float64
		expected string
	}{
		{0.0, "High"},
		{0.3999, "High"},
		{0.40, "Medium"},
		{0.55, "Medium"},
		{0.6999, "Medium"},
		{0.70, "Low"},
		{1.0, "Low"},
	}

	for _, tt := range tests {
		engine := service.NewPredictionEngine(fixedClassifier(0, 1-tt.p, tt.p))
		result, err := engine.Predict(context.Background(), validSignal(t))
		require.NoError(t, err)
		assert.Equal(t, tt.expected, result.DropoutRisk().String(), "p=%v", tt.p)
	}
}

func TestPredictionEngine_BandUsesUnroundedProbability(t *testing.T) {
	// 0.39996 rounds to 0.4000 for display but stays in the High band.
	engine := service.NewPredictionEngine(fixedClassifier(0, 0.60004, 0.39996))

	result, err := engine.Predict(context.Background(), validSignal(t))
	require.NoError(t, err)

	assert.Equal(t, 0.4, result.CompletionProbability())
	assert.Equal(t, "High", result.DropoutRisk().String())
	assert.Equal(t, 0.6, result.Confidence())
}

func TestPredictionEngine_RoundsToFourPlaces(t *testing.T) {
	engine := service.NewPredictionEngine(fixedClassifier(1, 0.123456, 0.876544))

	result, err := engine.Predict(context.Background(), validSignal(t))
	require.NoError(t, err)

	assert.Equal(t, 0.8765, result.CompletionProbability())
	assert.Equal(t, 0.8765, result.Confidence())
}

func TestPredictionEngine_ModelUnavailable(t *testing.T) {
	engine := service.NewPredictionEngine(nil)
	assert.False(t, engine.Ready())

	_, err := engine.Predict(context.Background(), validSignal(t))
	assert.ErrorIs(t, err, model.ErrModelUnavailable)
}

func TestPredictionEngine_ExecutionErrors(t *testing.T) {
	boom := errors.New("feature shape mismatch")

	tests := []struct {
		name string
		clf  *mockClassifier
	}{
		{"proba error", &mockClassifier{predictProbaFn: func(model.FeatureRow) ([]float64, error) { return nil, boom }}},
		{"predict error", &mockClassifier{predictFn: func(model.FeatureRow) (int, error) { return 0, boom }}},
		{"short vector", fixedClassifier(1, 0.9)},
		{"NaN probability", fixedClassifier(1, math.NaN(), 0.5)},
		{"probability above one", fixedClassifier(1, -0.2, 1.2)},
		{"unknown label", fixedClassifier(2, 0.1, 0.9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := service.NewPredictionEngine(tt.clf)

			_, err := engine.Predict(context.Background(), validSignal(t))

			var perr *model.PredictionExecutionError
			require.ErrorAs(t, err, &perr)
		})
	}
}

func TestPredictionEngine_WrapsClassifierCause(t *testing.T) {
	boom := errors.New("feature shape mismatch")
	engine := service.NewPredictionEngine(&mockClassifier{
		predictProbaFn: func(model.FeatureRow) ([]float64, error) { return nil, boom },
	})

	_, err := engine.Predict(context.Background(), validSignal(t))
	assert.ErrorIs(t, err, boom)
}

func TestPredictionEngine_ProjectsRowInColumnOrder(t *testing.T) {
	clf := fixedClassifier(1, 0.2, 0.8)
	engine := service.NewPredictionEngine(clf)

	_, err := engine.Predict(context.Background(), validSignal(t))
	require.NoError(t, err)

	require.NotEmpty(t, clf.rows)
	assert.Equal(t, [5]float64{25.5, 15, 8, 85, 70}, clf.rows[0].Numeric)
	assert.Equal(t, [2]string{"Programming", "Desktop"}, clf.rows[0].Categorical)
}

func TestPredictionEngine_Deterministic(t *testing.T) {
	engine := service.NewPredictionEngine(fixedClassifier(1, 0.25, 0.75))
	signal := validSignal(t)

	first, err := engine.Predict(context.Background(), signal)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := engine.Predict(context.Background(), signal)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRound_HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 0.1235, service.Round(0.12345))
	assert.Equal(t, 0.8, service.Round(0.80001))
	assert.Equal(t, 1.0, service.Round(0.99999))
}
