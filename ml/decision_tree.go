package ml

import (
	"errors"
	"fmt"
)

type DecisionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

// TreeNode is one entry of a flattened tree. Value holds the per-class sample
// weights seen at the node during fitting.
type TreeNode struct {
	FeatureIdx int       `json:"feature"`
	Threshold  float64   `json:"threshold"`
	LeftChild  int       `json:"left"`
	RightChild int       `json:"right"`
	Value      []float64 `json:"value"`
	IsLeaf     bool      `json:"leaf"`
}

func (dt *DecisionTree) validate(nFeatures int) error {
	if len(dt.Nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range dt.Nodes {
		if node.IsLeaf {
			if len(node.Value) != numClasses {
				return fmt.Errorf("leaf %d has %d class values, expected %d", i, len(node.Value), numClasses)
			}
			if sum(node.Value) <= 0 {
				return fmt.Errorf("leaf %d has no weight", i)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= nFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		// children always follow their parent in the flattened layout, which
		// also rules out cycles
		if node.LeftChild <= i || node.LeftChild >= len(dt.Nodes) ||
			node.RightChild <= i || node.RightChild >= len(dt.Nodes) {
			return fmt.Errorf("node %d: invalid children %d/%d", i, node.LeftChild, node.RightChild)
		}
	}
	return nil
}

// leafProba walks a single row down to its leaf and returns the normalized
// class distribution.
func (dt *DecisionTree) leafProba(features []float64) ([]float64, error) {
	if len(dt.Nodes) == 0 {
		return nil, errors.New("empty tree")
	}
	idx := 0
	for {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			total := sum(node.Value)
			proba := make([]float64, len(node.Value))
			for i, v := range node.Value {
				proba[i] = v / total
			}
			return proba, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return nil, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.Nodes) {
			return nil, errors.New("invalid tree state")
		}
	}
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
