package ml

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/AtharvaDeo101/KARA/internal/domain/model"
)

// Supported artifact model types.
const (
	ModelTypeLogistic = "logistic_regression"
	ModelTypeTrees    = "gradient_boosted_trees"
)

// FormatVersion is the only artifact layout this package understands.
const FormatVersion = 1

// Artifact is the exported form of a trained preprocessing + classifier
// pipeline.
type Artifact struct {
	Logistic       *LogisticParams `json:"logistic,omitempty" yaml:"logistic,omitempty"`
	Trees          *TreeEnsemble   `json:"trees,omitempty" yaml:"trees,omitempty"`
	ModelType      string          `json:"model_type" yaml:"model_type"`
	FeatureColumns []string        `json:"feature_columns" yaml:"feature_columns"`
	Preprocessor   Preprocessor    `json:"preprocessor" yaml:"preprocessor"`
	FormatVersion  int             `json:"format_version" yaml:"format_version"`
}

// Preprocessor mirrors a column transformer: standard scaling of the numeric
// columns followed by one-hot encoding of the categorical ones.
type Preprocessor struct {
	Numeric     NumericScaler `json:"numeric" yaml:"numeric"`
	Categorical []OneHotSpec  `json:"categorical" yaml:"categorical"`
}

// NumericScaler standardizes each numeric column as (x - mean) / scale.
type NumericScaler struct {
	Columns []string  `json:"columns" yaml:"columns"`
	Mean    []float64 `json:"mean" yaml:"mean"`
	Scale   []float64 `json:"scale" yaml:"scale"`
}

// OneHotSpec encodes one categorical column. Values outside Categories encode
// as all zeros.
type OneHotSpec struct {
	Column     string   `json:"column" yaml:"column"`
	Categories []string `json:"categories" yaml:"categories"`
	DropFirst  bool     `json:"drop_first" yaml:"drop_first"`
}

// Width is the number of encoded columns the column expands to.
func (s OneHotSpec) Width() int {
	if s.DropFirst {
		return len(s.Categories) - 1
	}
	return len(s.Categories)
}

// LogisticParams holds a fitted logistic regression over the encoded vector.
type LogisticParams struct {
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
	Intercept    float64   `json:"intercept" yaml:"intercept"`
}

// TreeEnsemble holds boosted regression trees whose summed leaves form a
// log-odds margin: base_score + learning_rate * sum(leaf).
type TreeEnsemble struct {
	Trees        []Tree  `json:"trees" yaml:"trees"`
	BaseScore    float64 `json:"base_score" yaml:"base_score"`
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`
}

// Tree is a flat array of nodes; node 0 is the root.
type Tree struct {
	Nodes []TreeNode `json:"nodes" yaml:"nodes"`
}

// TreeNode is a split (x[feature] < threshold goes left) or a leaf.
type TreeNode struct {
	Feature   int     `json:"feature" yaml:"feature"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Left      int     `json:"left" yaml:"left"`
	Right     int     `json:"right" yaml:"right"`
	Leaf      float64 `json:"leaf" yaml:"leaf"`
	IsLeaf    bool    `json:"is_leaf" yaml:"is_leaf"`
}

// EncodedWidth is the length of the vector fed to the classifier.
func (a *Artifact) EncodedWidth() int {
	w := len(a.Preprocessor.Numeric.Columns)
	for _, c := range a.Preprocessor.Categorical {
		w += c.Width()
	}
	return w
}

// Validate checks that the artifact was trained on the expected schema and
// that all dimensions agree.
func (a *Artifact) Validate() error {
	if a.FormatVersion != FormatVersion {
		return fmt.Errorf("unsupported format_version %d", a.FormatVersion)
	}
	if !slices.Equal(a.FeatureColumns, model.FeatureColumns[:]) {
		return fmt.Errorf("feature_columns %v do not match expected %v", a.FeatureColumns, model.FeatureColumns)
	}

	num := a.Preprocessor.Numeric
	if !slices.Equal(num.Columns, model.NumericColumns[:]) {
		return fmt.Errorf("numeric columns %v do not match expected %v", num.Columns, model.NumericColumns)
	}
	if len(num.Mean) != len(num.Columns) || len(num.Scale) != len(num.Columns) {
		return errors.New("numeric scaler mean/scale length does not match its columns")
	}
	for i, s := range num.Scale {
		if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("numeric scaler scale[%d] must be positive, got %v", i, s)
		}
	}

	if len(a.Preprocessor.Categorical) != len(model.CategoricalColumns) {
		return fmt.Errorf("expected %d categorical encoders, got %d", len(model.CategoricalColumns), len(a.Preprocessor.Categorical))
	}
	for i, c := range a.Preprocessor.Categorical {
		if c.Column != model.CategoricalColumns[i] {
			return fmt.Errorf("categorical encoder %d is for %q, expected %q", i, c.Column, model.CategoricalColumns[i])
		}
		if c.Width() < 1 {
			return fmt.Errorf("categorical encoder for %q has no output columns", c.Column)
		}
	}

	width := a.EncodedWidth()

	switch a.ModelType {
	case ModelTypeLogistic:
		if a.Logistic == nil {
			return errors.New("model_type logistic_regression requires a logistic section")
		}
		if len(a.Logistic.Coefficients) != width {
			return fmt.Errorf("logistic has %d coefficients, encoded width is %d", len(a.Logistic.Coefficients), width)
		}
	case ModelTypeTrees:
		if a.Trees == nil || len(a.Trees.Trees) == 0 {
			return errors.New("model_type gradient_boosted_trees requires at least one tree")
		}
		for i, t := range a.Trees.Trees {
			if err := t.validate(width); err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
		}
	default:
		return fmt.Errorf("unsupported model_type %q", a.ModelType)
	}

	return nil
}

func (t Tree) validate(width int) error {
	if len(t.Nodes) == 0 {
		return errors.New("no nodes")
	}
	for i, n := range t.Nodes {
		if n.IsLeaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= width {
			return fmt.Errorf("node %d splits on feature %d outside encoded width %d", i, n.Feature, width)
		}
		// Children must come after their parent, which rules out cycles.
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(t.Nodes) {
				return fmt.Errorf("node %d has invalid child %d", i, child)
			}
		}
	}
	return nil
}
