package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	KindStandardScaler     = "standard_scaler"
	KindMinMaxScaler       = "min_max_scaler"
	KindRandomForest       = "random_forest"
	KindSVC                = "svc"
	KindLogisticRegression = "logistic_regression"
	KindVoting             = "voting"
)

// Artifact is the on-disk envelope shared by every fitted scaler and model.
type Artifact struct {
	Kind         string          `json:"kind"`
	NFeatures    int             `json:"n_features"`
	FeatureNames []string        `json:"feature_names,omitempty"`
	Params       json.RawMessage `json:"params"`
}

type votingParams struct {
	Voting     VotingMode `json:"voting"`
	Weights    []float64  `json:"weights"`
	Estimators []struct {
		Name     string    `json:"name"`
		Ref      string    `json:"ref"`
		Artifact *Artifact `json:"artifact"`
	} `json:"estimators"`
}

// maxRefDepth bounds nested voting references.
const maxRefDepth = 4

func readArtifact(path string) (*Artifact, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var artifact Artifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, err
	}
	return &artifact, nil
}

func (a *Artifact) header() error {
	if a.Kind == "" {
		return errors.New("artifact kind is required")
	}
	if a.NFeatures <= 0 {
		return errors.New("n_features must be positive")
	}
	if len(a.Params) == 0 {
		return errors.New("params are required")
	}
	return checkNames(a.FeatureNames, a.NFeatures)
}

// LoadScaler reads a fitted scaler artifact.
func LoadScaler(path string) (Scaler, error) {
	artifact, err := readArtifact(path)
	if err != nil {
		return nil, &ArtifactLoadError{Path: path, Err: err}
	}
	scaler, err := artifact.Scaler()
	if err != nil {
		return nil, &ArtifactLoadError{Path: path, Err: err}
	}
	return scaler, nil
}

func (a *Artifact) Scaler() (Scaler, error) {
	if err := a.header(); err != nil {
		return nil, err
	}
	switch a.Kind {
	case KindStandardScaler:
		scaler := &StandardScaler{}
		if err := json.Unmarshal(a.Params, scaler); err != nil {
			return nil, err
		}
		if err := scaler.validate(a.NFeatures); err != nil {
			return nil, err
		}
		return scaler, nil
	case KindMinMaxScaler:
		scaler := &MinMaxScaler{}
		if err := json.Unmarshal(a.Params, scaler); err != nil {
			return nil, err
		}
		if err := scaler.validate(a.NFeatures); err != nil {
			return nil, err
		}
		return scaler, nil
	default:
		return nil, fmt.Errorf("unsupported scaler kind %q", a.Kind)
	}
}

// LoadClassifier reads a fitted classifier artifact. Voting ensembles may
// reference member artifacts by path relative to the ensemble file.
func LoadClassifier(path string) (Classifier, error) {
	return loadClassifier(path, 0)
}

func loadClassifier(path string, depth int) (Classifier, error) {
	artifact, err := readArtifact(path)
	if err != nil {
		return nil, &ArtifactLoadError{Path: path, Err: err}
	}
	classifier, err := artifact.classifier(filepath.Dir(path), depth)
	if err != nil {
		var loadErr *ArtifactLoadError
		if errors.As(err, &loadErr) {
			return nil, err
		}
		return nil, &ArtifactLoadError{Path: path, Err: err}
	}
	return classifier, nil
}

// Classifier decodes an in-memory artifact. Voting references are resolved
// relative to the working directory.
func (a *Artifact) Classifier() (Classifier, error) {
	return a.classifier(".", 0)
}

func (a *Artifact) classifier(dir string, depth int) (Classifier, error) {
	if err := a.header(); err != nil {
		return nil, err
	}
	switch a.Kind {
	case KindRandomForest:
		model := &RandomForest{}
		if err := json.Unmarshal(a.Params, model); err != nil {
			return nil, err
		}
		if err := model.validate(a.NFeatures); err != nil {
			return nil, err
		}
		return model, nil
	case KindSVC:
		model := &SVC{}
		if err := json.Unmarshal(a.Params, model); err != nil {
			return nil, err
		}
		if err := model.validate(a.NFeatures); err != nil {
			return nil, err
		}
		return model, nil
	case KindLogisticRegression:
		model := &LogisticRegression{}
		if err := json.Unmarshal(a.Params, model); err != nil {
			return nil, err
		}
		if err := model.validate(a.NFeatures); err != nil {
			return nil, err
		}
		return model, nil
	case KindVoting:
		return a.voting(dir, depth)
	default:
		return nil, fmt.Errorf("unsupported model kind %q", a.Kind)
	}
}

func (a *Artifact) voting(dir string, depth int) (Classifier, error) {
	if depth >= maxRefDepth {
		return nil, errors.New("voting ensembles nested too deeply")
	}
	var params votingParams
	if err := json.Unmarshal(a.Params, &params); err != nil {
		return nil, err
	}
	estimators := make([]NamedClassifier, 0, len(params.Estimators))
	for i, e := range params.Estimators {
		name := e.Name
		if name == "" {
			name = fmt.Sprintf("estimator_%d", i)
		}
		var (
			member Classifier
			err    error
		)
		switch {
		case e.Ref != "" && e.Artifact != nil:
			return nil, fmt.Errorf("estimator %s: ref and artifact are mutually exclusive", name)
		case e.Ref != "":
			ref := e.Ref
			if !filepath.IsAbs(ref) {
				ref = filepath.Join(dir, ref)
			}
			member, err = loadClassifier(ref, depth+1)
		case e.Artifact != nil:
			member, err = e.Artifact.classifier(dir, depth+1)
		default:
			err = errors.New("ref or artifact is required")
		}
		if err != nil {
			return nil, fmt.Errorf("estimator %s: %w", name, err)
		}
		if member.NumFeatures() != a.NFeatures {
			return nil, fmt.Errorf("estimator %s expects %d features, ensemble declares %d", name, member.NumFeatures(), a.NFeatures)
		}
		estimators = append(estimators, NamedClassifier{Name: name, Classifier: member})
	}
	return NewVotingEnsemble(params.Voting, estimators, params.Weights)
}
