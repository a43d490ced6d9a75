package ml

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/AtharvaDeo101/KARA/internal/domain/model"
)

// Pipeline is a loaded artifact that encodes feature rows and scores them.
// It is immutable and safe for concurrent use.
type Pipeline struct {
	artifact *Artifact
	margin   func(x *mat.VecDense) float64
	width    int
}

// NewPipeline builds a classifier from an artifact that already passed Validate.
func NewPipeline(a *Artifact) *Pipeline {
	p := &Pipeline{artifact: a, width: a.EncodedWidth()}

	switch a.ModelType {
	case ModelTypeLogistic:
		coef := mat.NewVecDense(len(a.Logistic.Coefficients), append([]float64(nil), a.Logistic.Coefficients...))
		intercept := a.Logistic.Intercept
		p.margin = func(x *mat.VecDense) float64 {
			return mat.Dot(coef, x) + intercept
		}
	case ModelTypeTrees:
		ens := a.Trees
		p.margin = func(x *mat.VecDense) float64 {
			sum := 0.0
			for _, t := range ens.Trees {
				sum += t.leafFor(x)
			}
			return ens.BaseScore + ens.LearningRate*sum
		}
	}

	return p
}

// ModelType reports the artifact's model family.
func (p *Pipeline) ModelType() string {
	return p.artifact.ModelType
}

// Encode applies scaling and one-hot encoding to the row.
func (p *Pipeline) Encode(row model.FeatureRow) (*mat.VecDense, error) {
	num := p.artifact.Preprocessor.Numeric

	scaled := make([]float64, len(row.Numeric))
	copy(scaled, row.Numeric[:])
	floats.Sub(scaled, num.Mean)
	floats.Div(scaled, num.Scale)

	x := make([]float64, 0, p.width)
	x = append(x, scaled...)
	for i, enc := range p.artifact.Preprocessor.Categorical {
		x = append(x, oneHot(enc, row.Categorical[i])...)
	}

	if len(x) != p.width {
		return nil, fmt.Errorf("encoded %d features, model expects %d", len(x), p.width)
	}
	if floats.HasNaN(x) || !allFinite(x) {
		return nil, errors.New("encoded features contain non-finite values")
	}

	return mat.NewVecDense(len(x), x), nil
}

// PredictProba returns [P(not complete), P(complete)].
func (p *Pipeline) PredictProba(row model.FeatureRow) ([]float64, error) {
	x, err := p.Encode(row)
	if err != nil {
		return nil, err
	}

	z := p.margin(x)
	if math.IsNaN(z) {
		return nil, errors.New("model produced a NaN margin")
	}

	pos := sigmoid(z)
	return []float64{1 - pos, pos}, nil
}

// Predict returns the most probable class. Ties go to class 0.
func (p *Pipeline) Predict(row model.FeatureRow) (int, error) {
	proba, err := p.PredictProba(row)
	if err != nil {
		return 0, err
	}
	if proba[1] > proba[0] {
		return 1, nil
	}
	return 0, nil
}

func oneHot(enc OneHotSpec, value string) []float64 {
	out := make([]float64, enc.Width())
	cats := enc.Categories
	if enc.DropFirst {
		cats = cats[1:]
	}
	for i, c := range cats {
		if c == value {
			out[i] = 1
			break
		}
	}
	return out
}

func (t Tree) leafFor(x *mat.VecDense) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.IsLeaf {
			return n.Leaf
		}
		if x.AtVec(n.Feature) < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
