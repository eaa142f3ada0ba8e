package inference

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"cancerscope/ml"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample 842302 from the Wisconsin diagnostic data set, diagnosed malignant
var malignantSample = []float64{
	20.57, 17.77, 132.9, 1326, 0.08474, 0.07864, 0.0869, 0.07017, 0.1812, 0.05667,
	0.5435, 0.7339, 3.398, 74.08, 0.005225, 0.01308, 0.0186, 0.0134, 0.01389, 0.003532,
	24.99, 23.41, 158.8, 1956, 0.1238, 0.1866, 0.2416, 0.186, 0.275, 0.08902,
}

func testPaths() Paths {
	return Paths{
		Scaler:         filepath.Join("testdata", "scaler.json"),
		RandomForest:   filepath.Join("testdata", "random_forest.json"),
		SVM:            filepath.Join("testdata", "svm.json"),
		VotingEnsemble: filepath.Join("testdata", "voting.json"),
	}
}

func loadTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	o, err := Load(testPaths())
	require.NoError(t, err)
	return o
}

func constant(v float64) []float64 {
	values := make([]float64, ml.FeatureCount)
	for i := range values {
		values[i] = v
	}
	return values
}

func assertConsistent(t *testing.T, result Result) {
	t.Helper()
	switch result.ClassIndex {
	case 0:
		assert.Equal(t, LabelBenign, result.Label)
	case 1:
		assert.Equal(t, LabelMalignant, result.Label)
	default:
		t.Fatalf("unexpected class index %d", result.ClassIndex)
	}
	assert.GreaterOrEqual(t, result.ConfidencePercent, 0.0)
	assert.LessOrEqual(t, result.ConfidencePercent, 100.0)
}

func TestPredictZerosRandomForest(t *testing.T) {
	o := loadTestOrchestrator(t)

	result, err := o.Predict(constant(0), RandomForest)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ClassIndex)
	assert.Equal(t, LabelBenign, result.Label)
	assert.InDelta(t, 280.0/3, result.ConfidencePercent, 1e-9)
	assert.Equal(t, "Random Forest", result.ModelName)
}

func TestPredictMalignantSample(t *testing.T) {
	o := loadTestOrchestrator(t)

	tests := []struct {
		model      Model
		confidence float64
	}{
		{RandomForest, 95.0},
		{SVM, 57.43938862550203},
		{VotingEnsemble, 86.73686272337825},
	}
	for _, tt := range tests {
		t.Run(tt.model.Slug(), func(t *testing.T) {
			result, err := o.Predict(malignantSample, tt.model)
			require.NoError(t, err)
			assert.Equal(t, 1, result.ClassIndex)
			assert.Equal(t, LabelMalignant, result.Label)
			assert.InDelta(t, tt.confidence, result.ConfidencePercent, 1e-6)
		})
	}
}

func TestConfidenceIsPredictedClassProbability(t *testing.T) {
	o := loadTestOrchestrator(t)
	scaler, err := ml.LoadScaler(testPaths().Scaler)
	require.NoError(t, err)

	for _, values := range [][]float64{constant(0), constant(10), malignantSample} {
		batch, err := ml.NewBatch(values, ml.FeatureCount)
		require.NoError(t, err)
		scaled, err := scaler.Transform(batch)
		require.NoError(t, err)

		for _, m := range Models() {
			result, err := o.Predict(values, m)
			require.NoError(t, err)
			assertConsistent(t, result)

			proba, err := o.classifier(m).PredictProba(scaled)
			require.NoError(t, err)
			assert.InDelta(t, proba.At(0, result.ClassIndex)*100, result.ConfidencePercent, 1e-9)
		}
	}
}

func TestPredictIsDeterministic(t *testing.T) {
	o := loadTestOrchestrator(t)
	for _, m := range Models() {
		first, err := o.Predict(malignantSample, m)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := o.Predict(malignantSample, m)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

func TestPredictAllModelsEchoSelection(t *testing.T) {
	o := loadTestOrchestrator(t)
	values := constant(ml.DefaultFeatureValue)

	results := make([]Result, 0, 3)
	for _, m := range Models() {
		result, err := o.Predict(values, m)
		require.NoError(t, err)
		assertConsistent(t, result)
		assert.Equal(t, m.String(), result.ModelName)
		results = append(results, result)
	}
	assert.Len(t, results, 3)
}

func TestPredictRejectsWrongDimensionality(t *testing.T) {
	o := loadTestOrchestrator(t)
	for _, n := range []int{0, 1, 29, 31, 60} {
		for _, m := range Models() {
			_, err := o.Predict(make([]float64, n), m)
			var shapeErr *ml.InputShapeError
			require.True(t, errors.As(err, &shapeErr), "n=%d model=%s: %v", n, m, err)
			assert.Equal(t, n, shapeErr.Got)
			assert.Equal(t, ml.FeatureCount, shapeErr.Want)
		}
	}

	values := constant(1)
	values[3] = math.NaN()
	_, err := o.Predict(values, SVM)
	var shapeErr *ml.InputShapeError
	assert.True(t, errors.As(err, &shapeErr))
}

func TestPredictUnknownModel(t *testing.T) {
	o := loadTestOrchestrator(t)
	_, err := o.Predict(constant(1), Model(7))
	assert.True(t, errors.Is(err, ErrUnknownModel))
}

func TestPredictWithoutProbabilityEstimation(t *testing.T) {
	paths := testPaths()
	scaler, err := ml.LoadScaler(paths.Scaler)
	require.NoError(t, err)
	rf, err := ml.LoadClassifier(paths.RandomForest)
	require.NoError(t, err)
	svm, err := ml.LoadClassifier(paths.SVM)
	require.NoError(t, err)
	hard, err := ml.LoadClassifier(filepath.Join("testdata", "hard_voting.json"))
	require.NoError(t, err)

	o, err := New(scaler, rf, svm, hard)
	require.NoError(t, err)

	_, err = o.Predict(malignantSample, VotingEnsemble)
	var capErr *ml.CapabilityUnavailableError
	require.True(t, errors.As(err, &capErr), "got %v", err)
	assert.Equal(t, "Voting Ensemble", capErr.Model)

	result, err := o.Predict(malignantSample, RandomForest)
	require.NoError(t, err, "other models keep working")
	assert.Equal(t, LabelMalignant, result.Label)
}

func TestLoadFailures(t *testing.T) {
	paths := testPaths()
	paths.SVM = filepath.Join("testdata", "missing.json")
	_, err := Load(paths)
	var loadErr *ml.ArtifactLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, paths.SVM, loadErr.Path)

	paths = testPaths()
	paths.RandomForest = filepath.Join("testdata", "narrow_forest.json")
	_, err = Load(paths)
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, paths.RandomForest, loadErr.Path)
}

func TestNewRequiresAllArtifacts(t *testing.T) {
	scaler, err := ml.LoadScaler(testPaths().Scaler)
	require.NoError(t, err)
	rf, err := ml.LoadClassifier(testPaths().RandomForest)
	require.NoError(t, err)

	_, err = New(nil, rf, rf, rf)
	assert.Error(t, err)
	_, err = New(scaler, rf, nil, rf)
	assert.Error(t, err)
	_, err = New(scaler, rf, rf, rf)
	assert.NoError(t, err)
}

func TestPredictRejectsOverflowingValues(t *testing.T) {
	o := loadTestOrchestrator(t)

	for _, v := range []float64{1e308, -1e308, math.MaxFloat64} {
		for _, m := range Models() {
			result, err := o.Predict(constant(v), m)
			var shapeErr *ml.InputShapeError
			require.True(t, errors.As(err, &shapeErr), "v=%g model=%s result=%+v err=%v", v, m, result, err)
			assert.Contains(t, shapeErr.Error(), "out of range")
		}
	}

	for _, m := range Models() {
		result, err := o.Predict(constant(1e200), m)
		if err != nil {
			var shapeErr *ml.InputShapeError
			assert.True(t, errors.As(err, &shapeErr), "model=%s err=%v", m, err)
			continue
		}
		assert.False(t, math.IsNaN(result.ConfidencePercent), "model=%s", m)
		assertConsistent(t, result)
	}
}

func TestPredictSoftVotingMemberWithoutProbability(t *testing.T) {
	paths := testPaths()
	scaler, err := ml.LoadScaler(paths.Scaler)
	require.NoError(t, err)
	rf, err := ml.LoadClassifier(paths.RandomForest)
	require.NoError(t, err)
	svm, err := ml.LoadClassifier(paths.SVM)
	require.NoError(t, err)
	soft, err := ml.LoadClassifier(filepath.Join("testdata", "soft_voting_no_platt.json"))
	require.NoError(t, err)

	o, err := New(scaler, rf, svm, soft)
	require.NoError(t, err)

	_, err = o.Predict(malignantSample, VotingEnsemble)
	var capErr *ml.CapabilityUnavailableError
	require.True(t, errors.As(err, &capErr), "got %v", err)
	assert.Equal(t, "Voting Ensemble", capErr.Model)
}
