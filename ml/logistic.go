package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LogisticRegression is a fitted binary logistic model.
type LogisticRegression struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

func (lr *LogisticRegression) validate(nFeatures int) error {
	if len(lr.Coef) != nFeatures {
		return fmt.Errorf("coef has %d entries, expected %d", len(lr.Coef), nFeatures)
	}
	return nil
}

func (lr *LogisticRegression) NumFeatures() int { return len(lr.Coef) }

func (lr *LogisticRegression) Predict(X mat.Matrix) ([]int, error) {
	return predictFromProba(lr, X)
}

func (lr *LogisticRegression) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	rows, err := checkColumns(X, len(lr.Coef))
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(rows, numClasses, nil)
	row := make([]float64, len(lr.Coef))
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		p1 := sigmoid(floats.Dot(lr.Coef, row) + lr.Intercept)
		out.Set(i, 0, 1-p1)
		out.Set(i, 1, p1)
	}
	return out, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
