package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

type WelcomeResponse struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
	Usage     UsageExample      `json:"usage"`
	ModelInfo ModelInfo         `json:"model_info"`
}

type UsageExample struct {
	PredictExample PredictRequest `json:"predict_example"`
}

type PredictRequest struct {
	Features []float64 `json:"features"`
}

type ModelInfo struct {
	Loaded       bool       `json:"loaded"`
	FeatureNames []string   `json:"feature_names,omitempty"`
	ClassLabels  []string   `json:"class_labels,omitempty"`
	TestAccuracy float64    `json:"test_accuracy,omitempty"`
	TrainedAt    *time.Time `json:"trained_at,omitempty"`
}

type HealthResponse struct {
	Status        string     `json:"status"`
	ModelLoaded   bool       `json:"model_loaded"`
	Version       string     `json:"version"`
	ModelLoadedAt *time.Time `json:"model_loaded_at,omitempty"`
	FeatureCount  int        `json:"feature_count"`
	ClassCount    int        `json:"class_count"`
}

type PredictResponse struct {
	PredictedClass string             `json:"predicted_class"`
	Probabilities  map[string]float64 `json:"probabilities"`
	Features       []float64          `json:"features"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	resp := WelcomeResponse{
		Name:    "irisd",
		Version: s.version,
		Message: "iris classification service",
		Endpoints: map[string]string{
			"GET /":         "service documentation",
			"GET /health":   "service and model health",
			"GET /status":   "runtime resource usage",
			"POST /predict": "classify a feature vector",
		},
		Usage: UsageExample{
			PredictExample: PredictRequest{Features: []float64{5.1, 3.5, 1.4, 0.2}},
		},
		ModelInfo: s.modelInfo(),
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) modelInfo() ModelInfo {
	if s.artifact == nil {
		return ModelInfo{Loaded: false}
	}
	trainedAt := s.artifact.TrainedAt
	return ModelInfo{
		Loaded:       true,
		FeatureNames: s.artifact.FeatureNames,
		ClassLabels:  s.artifact.ClassLabels,
		TestAccuracy: s.artifact.TestAccuracy,
		TrainedAt:    &trainedAt,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.artifact == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:      "degraded",
			ModelLoaded: false,
			Version:     s.version,
		})
		return
	}

	loadedAt := s.artifact.LoadedAt
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		ModelLoaded:   true,
		Version:       s.version,
		ModelLoadedAt: &loadedAt,
		FeatureCount:  s.artifact.FeatureCount(),
		ClassCount:    s.artifact.ClassCount(),
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if s.artifact == nil {
		s.writeError(w, http.StatusServiceUnavailable, "ModelUnavailable", "no model artifact is loaded")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "Malformed", "request body too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "Malformed", "failed to read request body")
		return
	}

	features, inputErr := ParseFeatures(body, s.artifact.FeatureCount())
	if inputErr != nil {
		s.writeError(w, http.StatusBadRequest, string(inputErr.Kind), inputErr.Message)
		return
	}

	predicted, probabilities, err := s.predict(features)
	if err != nil {
		s.logger.Error("prediction failed",
			"error", err,
			"features", features,
		)
		s.writeError(w, http.StatusInternalServerError, "Internal", "prediction failed")
		return
	}

	s.writeJSON(w, http.StatusOK, PredictResponse{
		PredictedClass: predicted,
		Probabilities:  probabilities,
		Features:       features,
	})
}

// predict invokes the classifier with a panic safety net. Validated input
// should never fail inference given a correctly loaded model, so any error
// here is an internal one.
func (s *Server) predict(features []float64) (predicted string, probabilities map[string]float64, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("classifier panic: %v", p)
		}
	}()

	labels := s.artifact.ClassLabels

	idx := s.artifact.Classifier.Predict(features)
	if idx < 0 || idx >= len(labels) {
		return "", nil, fmt.Errorf("class index %d out of range [0, %d)", idx, len(labels))
	}

	proba := s.artifact.Classifier.PredictProba(features)
	if len(proba) != len(labels) {
		return "", nil, fmt.Errorf("classifier returned %d probabilities for %d classes", len(proba), len(labels))
	}

	probabilities = make(map[string]float64, len(labels))
	for i, label := range labels {
		probabilities[label] = proba[i]
	}

	return labels[idx], probabilities, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := s.collector.Snapshot()
	if err != nil {
		s.logger.Error("failed to collect status", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Internal", "failed to collect status")
		return
	}

	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response",
			"error", err,
			"status", status,
		)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, kind, message string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:   kind,
		Message: message,
	})
}
