package ml_test

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtharvaDeo101/KARA/internal/domain/model"
	"github.com/AtharvaDeo101/KARA/internal/infrastructure/ml"
)

func canonicalRow() model.FeatureRow {
	return model.FeatureRow{
		Numeric:     [5]float64{25.5, 15, 8, 85, 70},
		Categorical: [2]string{"Programming", "Desktop"},
	}
}

func TestLoadFile_Logistic(t *testing.T) {
	p, err := ml.LoadFile(filepath.Join("testdata", "logistic.json"))
	require.NoError(t, err)
	assert.Equal(t, ml.ModelTypeLogistic, p.ModelType())

	proba, err := p.PredictProba(canonicalRow())
	require.NoError(t, err)
	require.Len(t, proba, 2)
	assert.InDelta(t, 1/(1+math.Exp(-6.0)), proba[1], 1e-9)
	assert.InDelta(t, 1.0, proba[0]+proba[1], 1e-12)

	label, err := p.Predict(canonicalRow())
	require.NoError(t, err)
	assert.Equal(t, 1, label)
}

func TestPipeline_OneHotEncoding(t *testing.T) {
	p, err := ml.LoadFile(filepath.Join("testdata", "logistic.json"))
	require.NoError(t, err)

	x, err := p.Encode(model.FeatureRow{
		Numeric:     [5]float64{1, 2, 3, 4, 5},
		Categorical: [2]string{"Programming", "Tablet"},
	})
	require.NoError(t, err)

	// 5 scaled numerics, 5 category columns (Business dropped), 2 device columns (Desktop dropped).
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 0, 0, 0, 0, 1, 0, 1}, x.RawVector().Data)
}

func TestPipeline_DroppedAndUnknownCategoriesEncodeAsZeros(t *testing.T) {
	p, err := ml.LoadFile(filepath.Join("testdata", "logistic.json"))
	require.NoError(t, err)

	for _, category := range []string{"Business", "Music"} {
		row := model.FeatureRow{Categorical: [2]string{category, "Desktop"}}

		proba, err := p.PredictProba(row)
		require.NoError(t, err)
		assert.Equal(t, []float64{0.5, 0.5}, proba, category)

		// Ties resolve to class 0.
		label, err := p.Predict(row)
		require.NoError(t, err)
		assert.Equal(t, 0, label, category)
	}
}

func TestPipeline_NonFiniteFeatures(t *testing.T) {
	p, err := ml.LoadFile(filepath.Join("testdata", "logistic.json"))
	require.NoError(t, err)

	row := canonicalRow()
	row.Numeric[0] = math.Inf(1)

	_, err = p.PredictProba(row)
	assert.ErrorContains(t, err, "non-finite")
}

func TestLoadFile_Trees(t *testing.T) {
	p, err := ml.LoadFile(filepath.Join("testdata", "trees.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ml.ModelTypeTrees, p.ModelType())

	tests := []struct {
		name   string
		quiz   float64
		device string
		margin float64
	}{
		{"high score on desktop", 85, "Desktop", 2.0},
		{"high score on mobile", 85, "Mobile", 0.5},
		{"low score", 40, "Desktop", -1.0},
		{"threshold goes right", 50, "Desktop", 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := canonicalRow()
			row.Numeric[3] = tt.quiz
			row.Categorical[1] = tt.device

			proba, err := p.PredictProba(row)
			require.NoError(t, err)
			assert.InDelta(t, 1/(1+math.Exp(-tt.margin)), proba[1], 1e-12)
		})
	}
}

func TestLoadFile_SampleArtifact(t *testing.T) {
	p, err := ml.LoadFile(filepath.Join("..", "..", "..", "models", "completion_model.json"))
	require.NoError(t, err)

	proba, err := p.PredictProba(canonicalRow())
	require.NoError(t, err)
	assert.Greater(t, proba[1], 0.7)

	weak := model.FeatureRow{
		Numeric:     [5]float64{2, 1, 0, 30, 5},
		Categorical: [2]string{"Business", "Mobile"},
	}
	proba, err = p.PredictProba(weak)
	require.NoError(t, err)
	assert.Less(t, proba[1], 0.4)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := ml.LoadFile(filepath.Join("testdata", "missing.json"))
	assert.ErrorIs(t, err, ml.ErrArtifactNotFound)

	_, err = ml.LoadFile(filepath.Join("testdata", "model.pkl"))
	assert.ErrorContains(t, err, "unsupported artifact extension")
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	_, err := ml.Load(strings.NewReader(`{"format_version":1,"surprise":true}`), ml.FormatJSON)
	assert.ErrorContains(t, err, "failed to decode JSON artifact")
}

func TestArtifact_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(a *ml.Artifact)
		wantErr string
	}{
		{"wrong version", func(a *ml.Artifact) { a.FormatVersion = 2 }, "format_version"},
		{"reordered columns", func(a *ml.Artifact) {
			a.FeatureColumns[0], a.FeatureColumns[1] = a.FeatureColumns[1], a.FeatureColumns[0]
		}, "feature_columns"},
		{"missing column", func(a *ml.Artifact) { a.FeatureColumns = a.FeatureColumns[:6] }, "feature_columns"},
		{"short mean", func(a *ml.Artifact) { a.Preprocessor.Numeric.Mean = a.Preprocessor.Numeric.Mean[:4] }, "mean/scale"},
		{"zero scale", func(a *ml.Artifact) { a.Preprocessor.Numeric.Scale[2] = 0 }, "scale[2]"},
		{"swapped encoders", func(a *ml.Artifact) {
			c := a.Preprocessor.Categorical
			c[0], c[1] = c[1], c[0]
		}, "categorical encoder 0"},
		{"coefficient count", func(a *ml.Artifact) { a.Logistic.Coefficients = a.Logistic.Coefficients[:11] }, "coefficients"},
		{"missing logistic", func(a *ml.Artifact) { a.Logistic = nil }, "requires a logistic section"},
		{"unknown model type", func(a *ml.Artifact) { a.ModelType = "random_forest" }, "unsupported model_type"},
		{"tree cycle", func(a *ml.Artifact) {
			a.ModelType = ml.ModelTypeTrees
			a.Trees = &ml.TreeEnsemble{LearningRate: 1, Trees: []ml.Tree{{Nodes: []ml.TreeNode{
				{Feature: 0, Threshold: 1, Left: 0, Right: 1},
				{IsLeaf: true},
			}}}}
		}, "invalid child"},
		{"tree feature out of range", func(a *ml.Artifact) {
			a.ModelType = ml.ModelTypeTrees
			a.Trees = &ml.TreeEnsemble{LearningRate: 1, Trees: []ml.Tree{{Nodes: []ml.TreeNode{
				{Feature: 12, Threshold: 1, Left: 1, Right: 2},
				{IsLeaf: true},
				{IsLeaf: true},
			}}}}
		}, "outside encoded width"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := loadArtifact(t)
			tt.mutate(a)
			err := a.Validate()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func loadArtifact(t *testing.T) *ml.Artifact {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "logistic.json"))
	require.NoError(t, err)
	var a ml.Artifact
	require.NoError(t, json.Unmarshal(data, &a))
	require.NoError(t, a.Validate())
	return &a
}
