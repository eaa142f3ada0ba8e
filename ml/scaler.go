package ml

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StandardScaler applies (x - mean) / scale per column.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) validate(n int) error {
	if len(s.Mean) != n || len(s.Scale) != n {
		return fmt.Errorf("mean/scale length mismatch: %d/%d, expected %d", len(s.Mean), len(s.Scale), n)
	}
	return nil
}

func (s *StandardScaler) NumFeatures() int { return len(s.Mean) }

func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	rows, err := checkColumns(X, len(s.Mean))
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(rows, len(s.Mean), nil)
	out.Apply(func(i, j int, v float64) float64 {
		return StandardizeFeature(v, s.Mean[j], s.Scale[j])
	}, X)
	return out, nil
}

// MinMaxScaler maps each column onto [0, 1] using the fitted bounds.
type MinMaxScaler struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

func (s *MinMaxScaler) validate(n int) error {
	if len(s.Min) != n || len(s.Max) != n {
		return fmt.Errorf("min/max length mismatch: %d/%d, expected %d", len(s.Min), len(s.Max), n)
	}
	for i := range s.Min {
		if s.Min[i] > s.Max[i] {
			return fmt.Errorf("min > max for feature %d", i)
		}
	}
	return nil
}

func (s *MinMaxScaler) NumFeatures() int { return len(s.Min) }

func (s *MinMaxScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	rows, err := checkColumns(X, len(s.Min))
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(rows, len(s.Min), nil)
	out.Apply(func(i, j int, v float64) float64 {
		return NormalizeFeature(v, s.Min[j], s.Max[j])
	}, X)
	return out, nil
}

func StandardizeFeature(value, mean, scale float64) float64 {
	if scale == 0 {
		scale = 1
	}
	return (value - mean) / scale
}

func NormalizeFeature(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (value - min) / (max - min)
}
