package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type Kernel string

const (
	KernelLinear  Kernel = "linear"
	KernelRBF     Kernel = "rbf"
	KernelPoly    Kernel = "poly"
	KernelSigmoid Kernel = "sigmoid"
)

// SVC is a binary support vector classifier in dual form. Probabilities come
// from Platt scaling of the decision value: P(class 1) = 1/(1+exp(A*f+B)).
type SVC struct {
	Kernel         Kernel      `json:"kernel"`
	Gamma          float64     `json:"gamma"`
	Coef0          float64     `json:"coef0"`
	Degree         int         `json:"degree"`
	SupportVectors [][]float64 `json:"support_vectors"`
	DualCoef       []float64   `json:"dual_coef"`
	Intercept      float64     `json:"intercept"`
	ProbA          *float64    `json:"prob_a,omitempty"`
	ProbB          *float64    `json:"prob_b,omitempty"`
	nFeatures      int
}

func (s *SVC) validate(nFeatures int) error {
	switch s.Kernel {
	case KernelLinear, KernelRBF, KernelPoly, KernelSigmoid:
	case "":
		s.Kernel = KernelRBF
	default:
		return fmt.Errorf("unsupported kernel %q", s.Kernel)
	}
	if len(s.SupportVectors) == 0 {
		return fmt.Errorf("no support vectors")
	}
	if len(s.SupportVectors) != len(s.DualCoef) {
		return fmt.Errorf("%d support vectors but %d dual coefficients", len(s.SupportVectors), len(s.DualCoef))
	}
	for i, sv := range s.SupportVectors {
		if len(sv) != nFeatures {
			return fmt.Errorf("support vector %d has %d features, expected %d", i, len(sv), nFeatures)
		}
	}
	if (s.ProbA == nil) != (s.ProbB == nil) {
		return fmt.Errorf("prob_a and prob_b must be set together")
	}
	if s.Kernel == KernelPoly && s.Degree <= 0 {
		s.Degree = 3
	}
	s.nFeatures = nFeatures
	return nil
}

func (s *SVC) NumFeatures() int { return s.nFeatures }

// HasProbability reports whether Platt scaling parameters were fitted.
func (s *SVC) HasProbability() bool { return s.ProbA != nil && s.ProbB != nil }

// DecisionFunction returns the signed distance of each row to the separating
// hyperplane. Positive values are class 1.
func (s *SVC) DecisionFunction(X mat.Matrix) ([]float64, error) {
	rows, err := checkColumns(X, s.nFeatures)
	if err != nil {
		return nil, err
	}
	out := make([]float64, rows)
	row := make([]float64, s.nFeatures)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		f := s.Intercept
		for j, sv := range s.SupportVectors {
			f += s.DualCoef[j] * s.kernel(sv, row)
		}
		out[i] = f
	}
	return out, nil
}

func (s *SVC) Predict(X mat.Matrix) ([]int, error) {
	decisions, err := s.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(decisions))
	for i, f := range decisions {
		if f > 0 {
			labels[i] = 1
		}
	}
	return labels, nil
}

func (s *SVC) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	if !s.HasProbability() {
		return nil, &CapabilityUnavailableError{Model: "svc"}
	}
	decisions, err := s.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(decisions), numClasses, nil)
	for i, f := range decisions {
		p1 := 1 / (1 + math.Exp(*s.ProbA*f+*s.ProbB))
		out.Set(i, 0, 1-p1)
		out.Set(i, 1, p1)
	}
	return out, nil
}

func (s *SVC) kernel(a, b []float64) float64 {
	switch s.Kernel {
	case KernelLinear:
		return floats.Dot(a, b)
	case KernelPoly:
		return math.Pow(s.Gamma*floats.Dot(a, b)+s.Coef0, float64(s.Degree))
	case KernelSigmoid:
		return math.Tanh(s.Gamma*floats.Dot(a, b) + s.Coef0)
	default:
		d := floats.Distance(a, b, 2)
		return math.Exp(-s.Gamma * d * d)
	}
}
