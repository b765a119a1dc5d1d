package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// TrainConfig holds training parameters for a random forest.
type TrainConfig struct {
	NumTrees       int
	MaxDepth       int
	MinLeafSamples int

	// TestSize is the fraction of samples held out for accuracy evaluation
	// (stratified by class).
	TestSize float64

	// Seed makes training reproducible.
	Seed int64
}

// DefaultTrainConfig returns the defaults used by the train command.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		NumTrees:       200,
		MaxDepth:       10,
		MinLeafSamples: 1,
		TestSize:       0.2,
		Seed:           42,
	}
}

// TrainResult is the outcome of a training run.
type TrainResult struct {
	Forest       *Forest
	TestAccuracy float64
	TrainSamples int
	TestSamples  int
}

// Train fits a random forest on x/y. Each tree is grown on a bootstrap
// sample of the training split, considering sqrt(num_features) random
// features per split. The held-out split yields TestAccuracy.
func Train(x [][]float64, y []int, numClasses int, cfg TrainConfig) (*TrainResult, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, errors.New("training data is empty or misaligned")
	}
	if numClasses < 2 {
		return nil, fmt.Errorf("need at least 2 classes, got %d", numClasses)
	}
	if cfg.NumTrees < 1 {
		return nil, fmt.Errorf("num_trees must be at least 1, got %d", cfg.NumTrees)
	}
	if cfg.TestSize < 0 || cfg.TestSize >= 1 {
		return nil, fmt.Errorf("test_size must be in [0, 1), got %g", cfg.TestSize)
	}
	for _, label := range y {
		if label < 0 || label >= numClasses {
			return nil, fmt.Errorf("label %d out of range [0, %d)", label, numClasses)
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	trainIdx, testIdx := stratifiedSplit(y, numClasses, cfg.TestSize, rng)

	numFeatures := len(x[0])
	tcfg := treeConfig{
		maxDepth:       cfg.MaxDepth,
		minLeafSamples: cfg.MinLeafSamples,
		mtry:           int(math.Sqrt(float64(numFeatures))),
	}

	forest := &Forest{
		NumClasses: numClasses,
		Trees:      make([]Tree, cfg.NumTrees),
	}

	for t := 0; t < cfg.NumTrees; t++ {
		sample := make([]int, len(trainIdx))
		for i := range sample {
			sample[i] = trainIdx[rng.Intn(len(trainIdx))]
		}
		forest.Trees[t] = Tree{Nodes: growTree(x, y, sample, numClasses, tcfg, rng)}
	}

	result := &TrainResult{
		Forest:       forest,
		TrainSamples: len(trainIdx),
		TestSamples:  len(testIdx),
	}

	if len(testIdx) > 0 {
		correct := 0
		for _, i := range testIdx {
			if forest.Predict(x[i]) == y[i] {
				correct++
			}
		}
		result.TestAccuracy = float64(correct) / float64(len(testIdx))
	}

	return result, nil
}

// stratifiedSplit shuffles the indices of each class independently and holds
// out testSize of every class, so class balance survives the split.
func stratifiedSplit(y []int, numClasses int, testSize float64, rng *rand.Rand) (train, test []int) {
	byClass := make([][]int, numClasses)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	for _, idx := range byClass {
		rng.Shuffle(len(idx), func(i, j int) {
			idx[i], idx[j] = idx[j], idx[i]
		})
		cut := int(float64(len(idx)) * testSize)
		test = append(test, idx[:cut]...)
		train = append(train, idx[cut:]...)
	}
	return train, test
}
