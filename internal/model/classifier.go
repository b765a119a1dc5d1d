package model

// Classifier is the predictor capability exposed by a trained model.
// Implementations must be safe for concurrent use: Predict and PredictProba
// only read model state.
type Classifier interface {
	// Predict returns the index of the most likely class.
	Predict(features []float64) int

	// PredictProba returns the probability distribution over classes.
	// The returned slice sums to 1 and is index-aligned with the
	// artifact's class labels.
	PredictProba(features []float64) []float64
}
