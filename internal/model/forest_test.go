package model

import (
	"bytes"
	"math"
	"testing"
)

func leafTree(dist ...float64) Tree {
	return Tree{Nodes: []TreeNode{{Feature: -1, Left: -1, Right: -1, Dist: dist}}}
}

func TestForest_PredictProba_AveragesTrees(t *testing.T) {
	forest := &Forest{
		NumClasses: 3,
		Trees: []Tree{
			leafTree(1, 0, 0),
			leafTree(0, 1, 0),
		},
	}

	proba := forest.PredictProba([]float64{1, 2, 3, 4})

	want := []float64{0.5, 0.5, 0}
	for c := range want {
		if math.Abs(proba[c]-want[c]) > 1e-12 {
			t.Errorf("proba[%d] = %g, want %g", c, proba[c], want[c])
		}
	}
}

func TestForest_PredictProba_SumsToOne(t *testing.T) {
	forest := &Forest{
		NumClasses: 3,
		Trees: []Tree{
			leafTree(0.2, 0.3, 0.5),
			leafTree(0.6, 0.1, 0.3),
			leafTree(0, 0, 1),
		},
	}

	proba := forest.PredictProba([]float64{0})

	sum := 0.0
	for _, p := range proba {
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("probabilities sum to %g, want 1", sum)
	}
}

func TestForest_Predict_TieBreaksToLowestIndex(t *testing.T) {
	forest := &Forest{
		NumClasses: 3,
		Trees: []Tree{
			leafTree(0, 0.5, 0.5),
		},
	}

	if got := forest.Predict([]float64{0}); got != 1 {
		t.Errorf("Predict = %d, want 1 (lowest tied index)", got)
	}
}

func TestForest_PredictProba_EmptyForest(t *testing.T) {
	forest := &Forest{NumClasses: 2}

	proba := forest.PredictProba([]float64{0})
	if len(proba) != 2 || proba[0] != 0 || proba[1] != 0 {
		t.Errorf("empty forest proba = %v, want [0, 0]", proba)
	}
}

func TestForest_SaveLoadRoundtrip(t *testing.T) {
	x := [][]float64{{0.1}, {0.2}, {0.8}, {0.9}}
	y := []int{0, 0, 1, 1}

	result, err := Train(x, y, 2, TrainConfig{NumTrees: 5, MaxDepth: 3, MinLeafSamples: 1, Seed: 1})
	if err != nil {
		t.Fatalf("training failed: %v", err)
	}
	original := result.Forest

	var buf bytes.Buffer
	if err := original.Save(&buf); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var restored Forest
	if err := restored.Load(&buf); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if restored.NumClasses != original.NumClasses {
		t.Errorf("num_classes = %d, want %d", restored.NumClasses, original.NumClasses)
	}
	if len(restored.Trees) != len(original.Trees) {
		t.Fatalf("restored %d trees, want %d", len(restored.Trees), len(original.Trees))
	}

	for _, vector := range x {
		got := restored.PredictProba(vector)
		want := original.PredictProba(vector)
		for c := range want {
			if got[c] != want[c] {
				t.Errorf("proba(%v)[%d] = %g, want %g", vector, c, got[c], want[c])
			}
		}
	}
}

func TestForest_Load_InvalidJSON(t *testing.T) {
	var forest Forest
	if err := forest.Load(bytes.NewBufferString("{broken")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
