// Package inference turns 30 ordered measurements into a diagnosis using the
// scaler and classifiers loaded at startup.
package inference

import (
	"errors"
	"fmt"
	"math"

	"cancerscope/ml"
)

// Paths locates the four pre-fitted artifacts.
type Paths struct {
	Scaler         string
	RandomForest   string
	SVM            string
	VotingEnsemble string
}

// Orchestrator holds the process-wide artifacts. They are never mutated after
// construction, so Predict is safe for concurrent use.
type Orchestrator struct {
	scaler         ml.Scaler
	randomForest   ml.Classifier
	svm            ml.Classifier
	votingEnsemble ml.Classifier
}

// New binds one scaler and the three selectable classifiers.
func New(scaler ml.Scaler, randomForest, svm, votingEnsemble ml.Classifier) (*Orchestrator, error) {
	if scaler == nil {
		return nil, errors.New("scaler is required")
	}
	if scaler.NumFeatures() != ml.FeatureCount {
		return nil, fmt.Errorf("scaler expects %d features, want %d", scaler.NumFeatures(), ml.FeatureCount)
	}
	o := &Orchestrator{
		scaler:         scaler,
		randomForest:   randomForest,
		svm:            svm,
		votingEnsemble: votingEnsemble,
	}
	for _, m := range Models() {
		c := o.classifier(m)
		if c == nil {
			return nil, fmt.Errorf("%s classifier is required", m)
		}
		if c.NumFeatures() != ml.FeatureCount {
			return nil, fmt.Errorf("%s expects %d features, want %d", m, c.NumFeatures(), ml.FeatureCount)
		}
	}
	return o, nil
}

// Load reads all four artifacts. Any failure is an *ml.ArtifactLoadError.
func Load(paths Paths) (*Orchestrator, error) {
	scaler, err := ml.LoadScaler(paths.Scaler)
	if err != nil {
		return nil, err
	}
	if err := checkWidth(paths.Scaler, scaler.NumFeatures()); err != nil {
		return nil, err
	}

	classifiers := make([]ml.Classifier, 0, 3)
	for _, path := range []string{paths.RandomForest, paths.SVM, paths.VotingEnsemble} {
		c, err := ml.LoadClassifier(path)
		if err != nil {
			return nil, err
		}
		if err := checkWidth(path, c.NumFeatures()); err != nil {
			return nil, err
		}
		classifiers = append(classifiers, c)
	}
	return New(scaler, classifiers[0], classifiers[1], classifiers[2])
}

func checkWidth(path string, n int) error {
	if n != ml.FeatureCount {
		return &ml.ArtifactLoadError{
			Path: path,
			Err:  fmt.Errorf("fitted on %d features, want %d", n, ml.FeatureCount),
		}
	}
	return nil
}

func (o *Orchestrator) classifier(m Model) ml.Classifier {
	switch m {
	case RandomForest:
		return o.randomForest
	case SVM:
		return o.svm
	case VotingEnsemble:
		return o.votingEnsemble
	default:
		return nil
	}
}

// Predict scales values, which must follow ml.FeatureNames order, and
// classifies them with the selected model.
func (o *Orchestrator) Predict(values []float64, model Model) (Result, error) {
	batch, err := ml.NewBatch(values, ml.FeatureCount)
	if err != nil {
		return Result{}, err
	}
	classifier := o.classifier(model)
	if classifier == nil {
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownModel, int(model))
	}

	scaled, err := o.scaler.Transform(batch)
	if err != nil {
		return Result{}, fmt.Errorf("scale features: %w", err)
	}
	if err := checkFinite(scaled.RawRowView(0), "scaled feature"); err != nil {
		return Result{}, err
	}
	labels, err := classifier.Predict(scaled)
	if err != nil {
		return Result{}, model.wrapError("predict", err)
	}
	proba, err := classifier.PredictProba(scaled)
	if err != nil {
		return Result{}, model.wrapError("predict probability", err)
	}

	if len(labels) != 1 {
		return Result{}, fmt.Errorf("%s returned %d predictions for one sample", model, len(labels))
	}
	classIndex := labels[0]
	if classIndex != 0 && classIndex != 1 {
		return Result{}, fmt.Errorf("%s returned class %d", model, classIndex)
	}
	distribution := proba.RawRowView(0)
	if len(distribution) != 2 {
		return Result{}, fmt.Errorf("%s returned %d class probabilities", model, len(distribution))
	}
	if err := checkFinite(distribution, "class probability"); err != nil {
		return Result{}, err
	}

	return Result{
		ClassIndex:        classIndex,
		Label:             labelFor(classIndex),
		ConfidencePercent: confidencePercent(distribution[classIndex]),
		ModelName:         model.String(),
	}, nil
}

func confidencePercent(p float64) float64 {
	return math.Max(0, math.Min(100, p*100))
}

// wrapError reports a missing probability estimate under the selected model's
// name, whichever member of an ensemble raised it.
func (m Model) wrapError(op string, err error) error {
	var capErr *ml.CapabilityUnavailableError
	if errors.As(err, &capErr) {
		return &ml.CapabilityUnavailableError{Model: m.String()}
	}
	return fmt.Errorf("%s %s: %w", m, op, err)
}

// checkFinite rejects values that overflowed to Inf or NaN. Finite inputs at
// the edge of the float64 range can do that once scaled.
func checkFinite(values []float64, what string) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ml.InputShapeError{
				Want: ml.FeatureCount,
				Got:  ml.FeatureCount,
				Err:  fmt.Errorf("%s %d out of range: %v", what, i, v),
			}
		}
	}
	return nil
}
