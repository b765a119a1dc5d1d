package model

import (
	"math"
	"math/rand"
	"sort"
)

// TreeNode is a single node in a decision tree. Nodes are stored in a flat
// slice; Left and Right are absolute indices into that slice. Leaf nodes have
// Left == -1 and carry a class probability distribution.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Dist      []float64 `json:"dist,omitempty"`
}

// Tree is a CART classification tree with Gini-impurity splits.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// PredictProba walks the tree and returns the class distribution of the
// reached leaf.
func (t *Tree) PredictProba(features []float64) []float64 {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.Left < 0 {
			return node.Dist
		}
		if features[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

type treeConfig struct {
	maxDepth       int
	minLeafSamples int
	// Number of features considered per split. 0 means all features.
	mtry int
}

// growTree builds a tree over the samples selected by idx and returns its
// flat node slice.
func growTree(x [][]float64, y []int, idx []int, numClasses int, cfg treeConfig, rng *rand.Rand) []TreeNode {
	return growNode(x, y, idx, numClasses, 0, cfg, rng)
}

func growNode(x [][]float64, y []int, idx []int, numClasses, depth int, cfg treeConfig, rng *rand.Rand) []TreeNode {
	if depth >= cfg.maxDepth || len(idx) <= cfg.minLeafSamples || isPure(y, idx) {
		return []TreeNode{leafNode(y, idx, numClasses)}
	}

	feature, threshold, ok := bestSplit(x, y, idx, numClasses, cfg, rng)
	if !ok {
		return []TreeNode{leafNode(y, idx, numClasses)}
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if x[i][feature] <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}
	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		return []TreeNode{leafNode(y, idx, numClasses)}
	}

	left := growNode(x, y, leftIdx, numClasses, depth+1, cfg, rng)
	right := growNode(x, y, rightIdx, numClasses, depth+1, cfg, rng)

	nodes := make([]TreeNode, 0, 1+len(left)+len(right))
	nodes = append(nodes, TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      1,
		Right:     1 + len(left),
	})
	nodes = append(nodes, left...)
	nodes = append(nodes, right...)

	// Child indices were produced relative to each subtree root; shift them
	// to absolute positions in the combined slice.
	for i := 1; i < 1+len(left); i++ {
		if nodes[i].Left >= 0 {
			nodes[i].Left += 1
			nodes[i].Right += 1
		}
	}
	for i := 1 + len(left); i < len(nodes); i++ {
		if nodes[i].Left >= 0 {
			nodes[i].Left += 1 + len(left)
			nodes[i].Right += 1 + len(left)
		}
	}

	return nodes
}

func leafNode(y []int, idx []int, numClasses int) TreeNode {
	dist := make([]float64, numClasses)
	for _, i := range idx {
		dist[y[i]]++
	}
	total := float64(len(idx))
	if total > 0 {
		for c := range dist {
			dist[c] /= total
		}
	}
	return TreeNode{Feature: -1, Left: -1, Right: -1, Dist: dist}
}

func isPure(y []int, idx []int) bool {
	if len(idx) == 0 {
		return true
	}
	first := y[idx[0]]
	for _, i := range idx[1:] {
		if y[i] != first {
			return false
		}
	}
	return true
}

// bestSplit evaluates candidate thresholds over a random feature subset and
// returns the split minimizing weighted Gini impurity.
func bestSplit(x [][]float64, y []int, idx []int, numClasses int, cfg treeConfig, rng *rand.Rand) (int, float64, bool) {
	numFeatures := len(x[idx[0]])

	features := candidateFeatures(numFeatures, cfg.mtry, rng)

	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := math.MaxFloat64

	values := make([]float64, 0, len(idx))

	for _, f := range features {
		values = values[:0]
		for _, i := range idx {
			values = append(values, x[i][f])
		}
		sort.Float64s(values)

		for v := 1; v < len(values); v++ {
			if values[v] == values[v-1] {
				continue
			}
			threshold := (values[v] + values[v-1]) / 2

			impurity := splitImpurity(x, y, idx, f, threshold, numClasses)
			if impurity < bestImpurity {
				bestImpurity = impurity
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func candidateFeatures(numFeatures, mtry int, rng *rand.Rand) []int {
	all := make([]int, numFeatures)
	for i := range all {
		all[i] = i
	}
	if mtry <= 0 || mtry >= numFeatures || rng == nil {
		return all
	}
	rng.Shuffle(numFeatures, func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})
	return all[:mtry]
}

func splitImpurity(x [][]float64, y []int, idx []int, feature int, threshold float64, numClasses int) float64 {
	leftCounts := make([]int, numClasses)
	rightCounts := make([]int, numClasses)
	leftTotal, rightTotal := 0, 0

	for _, i := range idx {
		if x[i][feature] <= threshold {
			leftCounts[y[i]]++
			leftTotal++
		} else {
			rightCounts[y[i]]++
			rightTotal++
		}
	}

	total := float64(leftTotal + rightTotal)
	return float64(leftTotal)/total*gini(leftCounts, leftTotal) +
		float64(rightTotal)/total*gini(rightCounts, rightTotal)
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		impurity -= p * p
	}
	return impurity
}
