package ml

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// RandomForest averages the leaf distributions of its trees and predicts the
// class with the highest mean probability.
type RandomForest struct {
	Trees     []DecisionTree `json:"trees"`
	nFeatures int
}

func (rf *RandomForest) validate(nFeatures int) error {
	if len(rf.Trees) == 0 {
		return errors.New("forest has no trees")
	}
	for i := range rf.Trees {
		if err := rf.Trees[i].validate(nFeatures); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	rf.nFeatures = nFeatures
	return nil
}

func (rf *RandomForest) NumFeatures() int { return rf.nFeatures }

func (rf *RandomForest) Predict(X mat.Matrix) ([]int, error) {
	return predictFromProba(rf, X)
}

func (rf *RandomForest) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	rows, err := checkColumns(X, rf.nFeatures)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(rows, numClasses, nil)
	row := make([]float64, rf.nFeatures)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		acc := out.RawRowView(i)
		for t := range rf.Trees {
			proba, err := rf.Trees[t].leafProba(row)
			if err != nil {
				return nil, fmt.Errorf("tree %d: %w", t, err)
			}
			for c := range acc {
				acc[c] += proba[c]
			}
		}
		for c := range acc {
			acc[c] /= float64(len(rf.Trees))
		}
	}
	return out, nil
}
