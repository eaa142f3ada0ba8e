package ml

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

type VotingMode string

const (
	VotingSoft VotingMode = "soft"
	VotingHard VotingMode = "hard"
)

type NamedClassifier struct {
	Name       string
	Classifier Classifier
}

// VotingEnsemble combines member classifiers by weighted vote. Soft voting
// averages member probabilities; hard voting counts member predictions and
// cannot estimate probabilities.
type VotingEnsemble struct {
	Mode       VotingMode
	Estimators []NamedClassifier
	Weights    []float64
}

func NewVotingEnsemble(mode VotingMode, estimators []NamedClassifier, weights []float64) (*VotingEnsemble, error) {
	if mode == "" {
		mode = VotingHard
	}
	if mode != VotingSoft && mode != VotingHard {
		return nil, fmt.Errorf("unsupported voting mode %q", mode)
	}
	if len(estimators) == 0 {
		return nil, errors.New("ensemble has no estimators")
	}
	n := estimators[0].Classifier.NumFeatures()
	for _, e := range estimators[1:] {
		if e.Classifier.NumFeatures() != n {
			return nil, fmt.Errorf("estimator %s expects %d features, %s expects %d",
				e.Name, e.Classifier.NumFeatures(), estimators[0].Name, n)
		}
	}
	if weights == nil {
		weights = make([]float64, len(estimators))
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != len(estimators) {
		return nil, fmt.Errorf("%d weights for %d estimators", len(weights), len(estimators))
	}
	total := 0.0
	for _, w := range weights {
		if w < 0 {
			return nil, errors.New("weights must be non-negative")
		}
		total += w
	}
	if total == 0 {
		return nil, errors.New("weights sum to zero")
	}
	return &VotingEnsemble{Mode: mode, Estimators: estimators, Weights: weights}, nil
}

func (v *VotingEnsemble) NumFeatures() int {
	return v.Estimators[0].Classifier.NumFeatures()
}

func (v *VotingEnsemble) Predict(X mat.Matrix) ([]int, error) {
	if v.Mode == VotingSoft {
		return predictFromProba(v, X)
	}
	rows, err := checkColumns(X, v.NumFeatures())
	if err != nil {
		return nil, err
	}
	votes := mat.NewDense(rows, numClasses, nil)
	for k, e := range v.Estimators {
		labels, err := e.Classifier.Predict(X)
		if err != nil {
			return nil, fmt.Errorf("estimator %s: %w", e.Name, err)
		}
		for i, label := range labels {
			if label < 0 || label >= numClasses {
				return nil, fmt.Errorf("estimator %s returned class %d", e.Name, label)
			}
			votes.Set(i, label, votes.At(i, label)+v.Weights[k])
		}
	}
	out := make([]int, rows)
	for i := range out {
		out[i] = argmax(votes.RawRowView(i))
	}
	return out, nil
}

func (v *VotingEnsemble) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	if v.Mode != VotingSoft {
		return nil, &CapabilityUnavailableError{Model: "hard voting ensemble"}
	}
	rows, err := checkColumns(X, v.NumFeatures())
	if err != nil {
		return nil, err
	}
	total := 0.0
	out := mat.NewDense(rows, numClasses, nil)
	for k, e := range v.Estimators {
		proba, err := e.Classifier.PredictProba(X)
		if err != nil {
			return nil, fmt.Errorf("estimator %s: %w", e.Name, err)
		}
		var weighted mat.Dense
		weighted.Scale(v.Weights[k], proba)
		out.Add(out, &weighted)
		total += v.Weights[k]
	}
	out.Scale(1/total, out)
	return out, nil
}
