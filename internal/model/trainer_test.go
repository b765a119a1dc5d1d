package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/haskel/irisd/internal/dataset"
)

func irisData(t *testing.T) ([][]float64, []int) {
	t.Helper()
	x, y, err := dataset.Load()
	if err != nil {
		t.Fatalf("failed to load iris data: %v", err)
	}
	return x, y
}

func TestTrain_InvalidInput(t *testing.T) {
	valid := TrainConfig{NumTrees: 1, MaxDepth: 3, MinLeafSamples: 1, Seed: 1}

	tests := []struct {
		name       string
		x          [][]float64
		y          []int
		numClasses int
		cfg        TrainConfig
	}{
		{
			name:       "empty data",
			x:          nil,
			y:          nil,
			numClasses: 2,
			cfg:        valid,
		},
		{
			name:       "misaligned data",
			x:          [][]float64{{1}, {2}},
			y:          []int{0},
			numClasses: 2,
			cfg:        valid,
		},
		{
			name:       "single class",
			x:          [][]float64{{1}, {2}},
			y:          []int{0, 0},
			numClasses: 1,
			cfg:        valid,
		},
		{
			name:       "zero trees",
			x:          [][]float64{{1}, {2}},
			y:          []int{0, 1},
			numClasses: 2,
			cfg:        TrainConfig{NumTrees: 0, MaxDepth: 3, Seed: 1},
		},
		{
			name:       "test size too large",
			x:          [][]float64{{1}, {2}},
			y:          []int{0, 1},
			numClasses: 2,
			cfg:        TrainConfig{NumTrees: 1, MaxDepth: 3, TestSize: 1.0, Seed: 1},
		},
		{
			name:       "label out of range",
			x:          [][]float64{{1}, {2}},
			y:          []int{0, 5},
			numClasses: 2,
			cfg:        valid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Train(tt.x, tt.y, tt.numClasses, tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestTrain_Iris(t *testing.T) {
	x, y := irisData(t)

	cfg := TrainConfig{NumTrees: 25, MaxDepth: 10, MinLeafSamples: 1, TestSize: 0.2, Seed: 42}
	result, err := Train(x, y, len(dataset.ClassLabels), cfg)
	if err != nil {
		t.Fatalf("training failed: %v", err)
	}

	if result.TrainSamples != 120 {
		t.Errorf("train_samples = %d, want 120", result.TrainSamples)
	}
	if result.TestSamples != 30 {
		t.Errorf("test_samples = %d, want 30", result.TestSamples)
	}
	if result.TestAccuracy < 0.9 {
		t.Errorf("test accuracy = %.3f, want >= 0.9", result.TestAccuracy)
	}

	// The canonical setosa sample must classify as setosa.
	if got := result.Forest.Predict([]float64{5.1, 3.5, 1.4, 0.2}); got != 0 {
		t.Errorf("Predict(setosa sample) = %d, want 0", got)
	}
	// And an unmistakable virginica sample as virginica.
	if got := result.Forest.Predict([]float64{6.9, 3.1, 5.4, 2.1}); got != 2 {
		t.Errorf("Predict(virginica sample) = %d, want 2", got)
	}

	proba := result.Forest.PredictProba([]float64{5.1, 3.5, 1.4, 0.2})
	sum := 0.0
	for _, p := range proba {
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("probabilities sum to %g, want 1", sum)
	}
}

func TestTrain_Deterministic(t *testing.T) {
	x, y := irisData(t)

	cfg := TrainConfig{NumTrees: 10, MaxDepth: 8, MinLeafSamples: 1, TestSize: 0.2, Seed: 7}

	first, err := Train(x, y, 3, cfg)
	if err != nil {
		t.Fatalf("first training failed: %v", err)
	}
	second, err := Train(x, y, 3, cfg)
	if err != nil {
		t.Fatalf("second training failed: %v", err)
	}

	if first.TestAccuracy != second.TestAccuracy {
		t.Errorf("accuracy differs across runs: %g vs %g", first.TestAccuracy, second.TestAccuracy)
	}

	for _, vector := range x {
		a := first.Forest.PredictProba(vector)
		b := second.Forest.PredictProba(vector)
		for c := range a {
			if a[c] != b[c] {
				t.Fatalf("proba(%v) differs across runs: %v vs %v", vector, a, b)
			}
		}
	}
}

func TestTrain_NoHoldout(t *testing.T) {
	x := [][]float64{{0.1}, {0.2}, {0.8}, {0.9}}
	y := []int{0, 0, 1, 1}

	result, err := Train(x, y, 2, TrainConfig{NumTrees: 3, MaxDepth: 3, TestSize: 0, Seed: 1})
	if err != nil {
		t.Fatalf("training failed: %v", err)
	}

	if result.TestSamples != 0 {
		t.Errorf("test_samples = %d, want 0", result.TestSamples)
	}
	if result.TestAccuracy != 0 {
		t.Errorf("test_accuracy = %g, want 0 when nothing is held out", result.TestAccuracy)
	}
}

func TestStratifiedSplit_KeepsClassBalance(t *testing.T) {
	y := make([]int, 90)
	for i := range y {
		y[i] = i % 3
	}

	rng := rand.New(rand.NewSource(1))
	train, test := stratifiedSplit(y, 3, 0.2, rng)

	if len(train) != 72 || len(test) != 18 {
		t.Fatalf("split sizes = %d/%d, want 72/18", len(train), len(test))
	}

	counts := make([]int, 3)
	for _, i := range test {
		counts[y[i]]++
	}
	for c, n := range counts {
		if n != 6 {
			t.Errorf("test split has %d samples of class %d, want 6", n, c)
		}
	}

	// No index may appear on both sides.
	seen := make(map[int]bool, len(train))
	for _, i := range train {
		seen[i] = true
	}
	for _, i := range test {
		if seen[i] {
			t.Errorf("index %d appears in both splits", i)
		}
	}
}
