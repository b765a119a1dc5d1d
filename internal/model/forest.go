package model

import (
	"encoding/json"
	"fmt"
	"io"
)

// Forest is a random forest classifier: an ensemble of CART trees trained on
// bootstrap samples. Prediction averages the per-tree class distributions.
//
// A Forest is immutable after training or loading, so concurrent Predict and
// PredictProba calls need no locking.
type Forest struct {
	NumClasses int    `json:"num_classes"`
	Trees      []Tree `json:"trees"`
}

// Predict returns the index of the class with the highest averaged
// probability. Ties resolve to the lowest index, keeping predictions
// deterministic.
func (f *Forest) Predict(features []float64) int {
	proba := f.PredictProba(features)
	best := 0
	for c, p := range proba {
		if p > proba[best] {
			best = c
		}
	}
	return best
}

// PredictProba returns class probabilities averaged over all trees.
func (f *Forest) PredictProba(features []float64) []float64 {
	proba := make([]float64, f.NumClasses)
	if len(f.Trees) == 0 {
		return proba
	}
	for i := range f.Trees {
		dist := f.Trees[i].PredictProba(features)
		for c := range proba {
			proba[c] += dist[c]
		}
	}
	n := float64(len(f.Trees))
	for c := range proba {
		proba[c] /= n
	}
	return proba
}

// Save writes the forest as JSON.
func (f *Forest) Save(w io.Writer) error {
	if err := json.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("failed to encode forest: %w", err)
	}
	return nil
}

// Load reads a forest from JSON.
func (f *Forest) Load(r io.Reader) error {
	if err := json.NewDecoder(r).Decode(f); err != nil {
		return fmt.Errorf("failed to decode forest: %w", err)
	}
	return nil
}
