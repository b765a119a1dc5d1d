package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/haskel/irisd/internal/config"
	"github.com/haskel/irisd/internal/dataset"
	"github.com/haskel/irisd/internal/model"
	"github.com/haskel/irisd/internal/monitor"
)

func trainedIrisArtifact(t *testing.T) *model.Artifact {
	t.Helper()

	x, y, err := dataset.Load()
	if err != nil {
		t.Fatalf("failed to load iris data: %v", err)
	}

	cfg := model.TrainConfig{NumTrees: 25, MaxDepth: 10, MinLeafSamples: 1, TestSize: 0.2, Seed: 42}
	result, err := model.Train(x, y, len(dataset.ClassLabels), cfg)
	if err != nil {
		t.Fatalf("training failed: %v", err)
	}

	return &model.Artifact{
		Classifier:   result.Forest,
		FeatureNames: dataset.FeatureNames,
		ClassLabels:  dataset.ClassLabels,
		TrainedAt:    time.Now(),
		TestAccuracy: result.TestAccuracy,
		LoadedAt:     time.Now(),
	}
}

func TestServer_Integration(t *testing.T) {
	cfg := config.Default()

	collector, err := monitor.NewCollector()
	if err != nil {
		t.Fatalf("failed to create collector: %v", err)
	}

	srv := New(cfg, trainedIrisArtifact(t), collector, testLogger(), "0.1.0")

	// Exercise the full middleware chain, not just the mux.
	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	t.Run("GET /", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", resp.StatusCode)
		}

		var welcome WelcomeResponse
		if err := json.NewDecoder(resp.Body).Decode(&welcome); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if welcome.Name != "irisd" {
			t.Errorf("name = %q, want irisd", welcome.Name)
		}
	})

	t.Run("GET /health", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/health")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", resp.StatusCode)
		}

		var health HealthResponse
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if health.Status != "ok" {
			t.Errorf("status = %q, want ok", health.Status)
		}
	})

	t.Run("POST /predict setosa", func(t *testing.T) {
		body := bytes.NewBufferString(`{"features": [5.1, 3.5, 1.4, 0.2]}`)
		resp, err := http.Post(ts.URL+"/predict", "application/json", body)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}

		var prediction PredictResponse
		if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}

		if prediction.PredictedClass != "setosa" {
			t.Errorf("predicted_class = %q, want setosa", prediction.PredictedClass)
		}

		sum := 0.0
		for _, p := range prediction.Probabilities {
			sum += p
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("probabilities sum to %g, want 1", sum)
		}
	})

	t.Run("POST /predict identical requests agree", func(t *testing.T) {
		predict := func() PredictResponse {
			body := bytes.NewBufferString(`{"features": [6.2, 2.9, 4.3, 1.3]}`)
			resp, err := http.Post(ts.URL+"/predict", "application/json", body)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			var prediction PredictResponse
			if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			return prediction
		}

		first := predict()
		second := predict()

		if first.PredictedClass != second.PredictedClass {
			t.Errorf("predictions differ: %q vs %q", first.PredictedClass, second.PredictedClass)
		}
		for label, p := range first.Probabilities {
			if second.Probabilities[label] != p {
				t.Errorf("probabilities[%s] differ: %g vs %g", label, p, second.Probabilities[label])
			}
		}
	})

	t.Run("POST /predict oversized body", func(t *testing.T) {
		huge := `{"features": [` + strings.Repeat("1,", 1<<20) + `1]}`
		resp, err := http.Post(ts.URL+"/predict", "application/json", strings.NewReader(huge))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusRequestEntityTooLarge {
			t.Errorf("expected status 413, got %d", resp.StatusCode)
		}
	})

	t.Run("GET /unknown", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/unknown")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", resp.StatusCode)
		}
	})

	t.Run("security headers present", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/health")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
			t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
		}
	})
}

func TestServer_AuthProtectsPredict(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.Enabled = true
	cfg.Auth.User = "admin"
	cfg.Auth.Password = "secret"

	collector, err := monitor.NewCollector()
	if err != nil {
		t.Fatalf("failed to create collector: %v", err)
	}

	fake := &fakeClassifier{label: 0, proba: []float64{1, 0, 0}}
	srv := New(cfg, testArtifact(fake), collector, testLogger(), "0.1.0")

	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	// Probes stay open.
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("unauthenticated /health: expected status 200, got %d", resp.StatusCode)
	}

	// Predictions do not.
	body := bytes.NewBufferString(`{"features": [5.1, 3.5, 1.4, 0.2]}`)
	resp, err = http.Post(ts.URL+"/predict", "application/json", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated /predict: expected status 401, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/predict",
		bytes.NewBufferString(`{"features": [5.1, 3.5, 1.4, 0.2]}`))
	req.SetBasicAuth("admin", "secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("authenticated /predict: expected status 200, got %d", resp.StatusCode)
	}
}

func TestServer_ReloadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.Enabled = true
	cfg.Auth.User = "admin"
	cfg.Auth.Password = "old"

	collector, err := monitor.NewCollector()
	if err != nil {
		t.Fatalf("failed to create collector: %v", err)
	}

	fake := &fakeClassifier{label: 0, proba: []float64{1, 0, 0}}
	srv := New(cfg, testArtifact(fake), collector, testLogger(), "0.1.0")

	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	next := config.Default()
	next.Auth.Enabled = true
	next.Auth.User = "admin"
	next.Auth.Password = "new"
	srv.ReloadConfig(next)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/status", nil)
	req.SetBasicAuth("admin", "old")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("old password after reload: expected status 401, got %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/status", nil)
	req.SetBasicAuth("admin", "new")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("new password after reload: expected status 200, got %d", resp.StatusCode)
	}
}
