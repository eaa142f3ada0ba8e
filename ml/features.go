package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// FeatureCount is the dimensionality every scaler and classifier was fitted on.
const FeatureCount = 30

// DefaultFeatureValue is what the input form shows before the user edits a field.
const DefaultFeatureValue = 10.0

var featureNames = [FeatureCount]string{
	"radius_mean", "texture_mean", "perimeter_mean", "area_mean",
	"smoothness_mean", "compactness_mean", "concavity_mean",
	"concave points_mean", "symmetry_mean", "fractal_dimension_mean",
	"radius_se", "texture_se", "perimeter_se", "area_se",
	"smoothness_se", "compactness_se", "concavity_se",
	"concave points_se", "symmetry_se", "fractal_dimension_se",
	"radius_worst", "texture_worst", "perimeter_worst", "area_worst",
	"smoothness_worst", "compactness_worst", "concavity_worst",
	"concave points_worst", "symmetry_worst", "fractal_dimension_worst",
}

// FeatureNames returns the canonical feature order. The classifiers only see
// column positions, so callers must supply values in exactly this order.
func FeatureNames() []string {
	names := make([]string, FeatureCount)
	copy(names, featureNames[:])
	return names
}

// FeatureIndex returns the column of a canonical feature name.
func FeatureIndex(name string) (int, bool) {
	for i, n := range featureNames {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// NewBatch wraps a single row of values into a 1×n matrix.
func NewBatch(values []float64, want int) (*mat.Dense, error) {
	if len(values) != want {
		return nil, &InputShapeError{Want: want, Got: len(values)}
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &InputShapeError{
				Want: want,
				Got:  len(values),
				Err:  fmt.Errorf("feature %d is not a finite number", i),
			}
		}
	}
	row := make([]float64, len(values))
	copy(row, values)
	return mat.NewDense(1, len(row), row), nil
}

func checkColumns(X mat.Matrix, want int) (int, error) {
	rows, cols := X.Dims()
	if cols != want {
		return 0, &InputShapeError{Want: want, Got: cols}
	}
	return rows, nil
}

func checkNames(names []string, n int) error {
	if len(names) == 0 {
		return nil
	}
	if len(names) != n {
		return fmt.Errorf("feature_names has %d entries, expected %d", len(names), n)
	}
	if n != FeatureCount {
		return nil
	}
	for i, name := range names {
		if name != featureNames[i] {
			return fmt.Errorf("feature %d is %q, expected %q", i, name, featureNames[i])
		}
	}
	return nil
}
