package ml

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testForest(t *testing.T) *RandomForest {
	t.Helper()
	forest := &RandomForest{Trees: []DecisionTree{
		{Nodes: []TreeNode{
			{FeatureIdx: 0, Threshold: 0.5, LeftChild: 1, RightChild: 2},
			{IsLeaf: true, Value: []float64{30, 10}},
			{IsLeaf: true, Value: []float64{0, 20}},
		}},
		{Nodes: []TreeNode{
			{FeatureIdx: 1, Threshold: 0, LeftChild: 1, RightChild: 2},
			{IsLeaf: true, Value: []float64{5, 0}},
			{IsLeaf: true, Value: []float64{1, 3}},
		}},
	}}
	require.NoError(t, forest.validate(2))
	return forest
}

func float64Ptr(v float64) *float64 { return &v }

func TestRandomForestPredict(t *testing.T) {
	forest := testForest(t)
	X := mat.NewDense(2, 2, []float64{
		0, 0,
		1, 1,
	})

	proba, err := forest.PredictProba(X)
	require.NoError(t, err)
	assert.InDelta(t, 0.875, proba.At(0, 0), 1e-12)
	assert.InDelta(t, 0.125, proba.At(0, 1), 1e-12)
	assert.InDelta(t, 0.125, proba.At(1, 0), 1e-12)
	assert.InDelta(t, 0.875, proba.At(1, 1), 1e-12)

	labels, err := forest.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, labels)
}

func TestDecisionTreeValidate(t *testing.T) {
	tests := []struct {
		name  string
		nodes []TreeNode
	}{
		{"empty", nil},
		{"feature out of range", []TreeNode{
			{FeatureIdx: 3, LeftChild: 1, RightChild: 2},
			{IsLeaf: true, Value: []float64{1, 0}},
			{IsLeaf: true, Value: []float64{0, 1}},
		}},
		{"backward child", []TreeNode{
			{FeatureIdx: 0, LeftChild: 0, RightChild: 1},
			{IsLeaf: true, Value: []float64{1, 0}},
		}},
		{"leaf without weight", []TreeNode{
			{IsLeaf: true, Value: []float64{0, 0}},
		}},
		{"leaf with three classes", []TreeNode{
			{IsLeaf: true, Value: []float64{1, 1, 1}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := DecisionTree{Nodes: tt.nodes}
			assert.Error(t, tree.validate(2))
		})
	}
}

func TestSVCLinear(t *testing.T) {
	svc := &SVC{
		Kernel:         KernelLinear,
		SupportVectors: [][]float64{{1, 0}, {-1, 0}},
		DualCoef:       []float64{0.5, -0.5},
		ProbA:          float64Ptr(-1),
		ProbB:          float64Ptr(0),
	}
	require.NoError(t, svc.validate(2))

	X := mat.NewDense(2, 2, []float64{
		2, 0,
		-1, 5,
	})
	decisions, err := svc.DecisionFunction(X)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, decisions[0], 1e-12)
	assert.InDelta(t, -1.0, decisions[1], 1e-12)

	labels, err := svc.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, labels)

	proba, err := svc.PredictProba(X)
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-2)), proba.At(0, 1), 1e-12)
	assert.InDelta(t, 1-proba.At(0, 1), proba.At(0, 0), 1e-12)
	assert.Less(t, proba.At(1, 1), 0.5)
}

func TestSVCRBFKernel(t *testing.T) {
	svc := &SVC{
		Gamma:          0.5,
		SupportVectors: [][]float64{{0, 0}},
		DualCoef:       []float64{1},
		Intercept:      -0.5,
	}
	require.NoError(t, svc.validate(2))
	assert.Equal(t, KernelRBF, svc.Kernel)

	decisions, err := svc.DecisionFunction(mat.NewDense(2, 2, []float64{0, 0, 2, 0}))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, decisions[0], 1e-12)
	assert.InDelta(t, math.Exp(-2)-0.5, decisions[1], 1e-12)
}

func TestSVCWithoutProbability(t *testing.T) {
	svc := &SVC{
		Kernel:         KernelLinear,
		SupportVectors: [][]float64{{1, 0}},
		DualCoef:       []float64{1},
	}
	require.NoError(t, svc.validate(2))

	_, err := svc.PredictProba(mat.NewDense(1, 2, []float64{1, 1}))
	var capErr *CapabilityUnavailableError
	assert.True(t, errors.As(err, &capErr))

	svc.ProbA = float64Ptr(1)
	assert.Error(t, svc.validate(2), "prob_a without prob_b")
}

func TestLogisticRegression(t *testing.T) {
	lr := &LogisticRegression{Coef: []float64{1, 0}, Intercept: 0}
	require.NoError(t, lr.validate(2))

	X := mat.NewDense(2, 2, []float64{
		0, 3,
		2, 0,
	})
	proba, err := lr.PredictProba(X)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, proba.At(0, 1), 1e-12)
	assert.InDelta(t, sigmoid(2), proba.At(1, 1), 1e-12)

	labels, err := lr.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, labels, "ties resolve to class 0")
}

func TestVotingEnsembleSoft(t *testing.T) {
	lr := &LogisticRegression{Coef: []float64{0, 0}}
	ensemble, err := NewVotingEnsemble(VotingSoft, []NamedClassifier{
		{Name: "rf", Classifier: testForest(t)},
		{Name: "lr", Classifier: lr},
	}, nil)
	require.NoError(t, err)

	X := mat.NewDense(2, 2, []float64{
		0, 0,
		1, 1,
	})
	proba, err := ensemble.PredictProba(X)
	require.NoError(t, err)
	assert.InDelta(t, 0.6875, proba.At(0, 0), 1e-12)
	assert.InDelta(t, 0.6875, proba.At(1, 1), 1e-12)

	labels, err := ensemble.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, labels)
}

func TestVotingEnsembleHard(t *testing.T) {
	always := func(c int) Classifier {
		return &LogisticRegression{Coef: []float64{0, 0}, Intercept: float64(2*c - 1)}
	}
	ensemble, err := NewVotingEnsemble(VotingHard, []NamedClassifier{
		{Name: "a", Classifier: always(1)},
		{Name: "b", Classifier: always(0)},
		{Name: "c", Classifier: always(0)},
	}, []float64{3, 1, 1})
	require.NoError(t, err)

	labels, err := ensemble.Predict(mat.NewDense(1, 2, []float64{0, 0}))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, labels)

	_, err = ensemble.PredictProba(mat.NewDense(1, 2, []float64{0, 0}))
	var capErr *CapabilityUnavailableError
	assert.True(t, errors.As(err, &capErr))
}

func TestVotingEnsembleValidation(t *testing.T) {
	two := &LogisticRegression{Coef: []float64{0, 0}}
	three := &LogisticRegression{Coef: []float64{0, 0, 0}}

	_, err := NewVotingEnsemble(VotingSoft, nil, nil)
	assert.Error(t, err)
	_, err = NewVotingEnsemble("weighted", []NamedClassifier{{Name: "a", Classifier: two}}, nil)
	assert.Error(t, err)
	_, err = NewVotingEnsemble(VotingSoft, []NamedClassifier{{Name: "a", Classifier: two}, {Name: "b", Classifier: three}}, nil)
	assert.Error(t, err)
	_, err = NewVotingEnsemble(VotingSoft, []NamedClassifier{{Name: "a", Classifier: two}}, []float64{1, 2})
	assert.Error(t, err)
	_, err = NewVotingEnsemble(VotingSoft, []NamedClassifier{{Name: "a", Classifier: two}}, []float64{0})
	assert.Error(t, err)
}

func TestClassifiersRejectWrongWidth(t *testing.T) {
	svc := &SVC{Kernel: KernelLinear, SupportVectors: [][]float64{{1, 0}}, DualCoef: []float64{1}}
	require.NoError(t, svc.validate(2))
	lr := &LogisticRegression{Coef: []float64{1, 0}}

	X := mat.NewDense(1, 3, []float64{1, 2, 3})
	for name, c := range map[string]Classifier{"forest": testForest(t), "svc": svc, "lr": lr} {
		_, err := c.Predict(X)
		var shapeErr *InputShapeError
		assert.True(t, errors.As(err, &shapeErr), name)
	}
}
