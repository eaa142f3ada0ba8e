package ml

import "gonum.org/v1/gonum/mat"

// Scaler is a pre-fitted, stateless feature transform.
type Scaler interface {
	Transform(X mat.Matrix) (*mat.Dense, error)
	NumFeatures() int
}

// Classifier is a pre-fitted binary classifier. PredictProba returns one row
// per sample with columns indexed by class.
type Classifier interface {
	Predict(X mat.Matrix) ([]int, error)
	PredictProba(X mat.Matrix) (*mat.Dense, error)
	NumFeatures() int
}

const numClasses = 2

func argmax(row []float64) int {
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] > row[best] {
			best = i
		}
	}
	return best
}

func predictFromProba(c Classifier, X mat.Matrix) ([]int, error) {
	proba, err := c.PredictProba(X)
	if err != nil {
		return nil, err
	}
	rows, _ := proba.Dims()
	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		labels[i] = argmax(proba.RawRowView(i))
	}
	return labels, nil
}
