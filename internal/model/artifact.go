package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Artifact load failures. Either is fatal at serve startup: artifact
// presence is a deployment precondition, not a transient condition, so there
// are no retries.
var (
	ErrNotFound = errors.New("model artifact not found")
	ErrCorrupt  = errors.New("model artifact corrupt")
)

const artifactFormatVersion = 1

// Artifact is the trained classifier plus its metadata, loaded once per
// process and shared read-only across all requests.
type Artifact struct {
	Classifier   Classifier
	FeatureNames []string
	ClassLabels  []string
	TrainedAt    time.Time
	TestAccuracy float64
	Training     TrainingMeta

	// LoadedAt is captured once when the artifact enters memory.
	LoadedAt time.Time
}

// TrainingMeta records how the artifact was produced.
type TrainingMeta struct {
	Seed     int64   `json:"seed"`
	TestSize float64 `json:"test_size"`
	NumTrees int     `json:"num_trees"`
	MaxDepth int     `json:"max_depth"`
}

type artifactFile struct {
	FormatVersion int          `json:"format_version"`
	TrainedAt     time.Time    `json:"trained_at"`
	FeatureNames  []string     `json:"feature_names"`
	ClassLabels   []string     `json:"class_labels"`
	TestAccuracy  float64      `json:"test_accuracy"`
	Training      TrainingMeta `json:"training"`
	Forest        *Forest      `json:"forest"`
}

// FeatureCount returns the expected input vector length.
func (a *Artifact) FeatureCount() int {
	return len(a.FeatureNames)
}

// ClassCount returns the number of output classes.
func (a *Artifact) ClassCount() int {
	return len(a.ClassLabels)
}

// Load reads an artifact from disk. A missing file yields ErrNotFound; an
// unreadable, unparsable, or inconsistent file yields ErrCorrupt.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var file artifactFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	if err := validateArtifactFile(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	return &Artifact{
		Classifier:   file.Forest,
		FeatureNames: file.FeatureNames,
		ClassLabels:  file.ClassLabels,
		TrainedAt:    file.TrainedAt,
		TestAccuracy: file.TestAccuracy,
		Training:     file.Training,
		LoadedAt:     time.Now(),
	}, nil
}

func validateArtifactFile(file *artifactFile) error {
	if file.FormatVersion != artifactFormatVersion {
		return fmt.Errorf("unsupported format version %d", file.FormatVersion)
	}
	if len(file.FeatureNames) == 0 {
		return errors.New("feature_names is empty")
	}
	if len(file.ClassLabels) == 0 {
		return errors.New("class_labels is empty")
	}
	if file.Forest == nil || len(file.Forest.Trees) == 0 {
		return errors.New("forest is empty")
	}
	if file.Forest.NumClasses != len(file.ClassLabels) {
		return fmt.Errorf("forest has %d classes, class_labels has %d",
			file.Forest.NumClasses, len(file.ClassLabels))
	}
	return nil
}

// Save writes the artifact to disk via a temp file and atomic rename, so a
// crash mid-write never leaves a truncated artifact behind.
func (a *Artifact) Save(path string) error {
	forest, ok := a.Classifier.(*Forest)
	if !ok {
		return errors.New("only forest classifiers can be saved")
	}

	file := artifactFile{
		FormatVersion: artifactFormatVersion,
		TrainedAt:     a.TrainedAt,
		FeatureNames:  a.FeatureNames,
		ClassLabels:   a.ClassLabels,
		TestAccuracy:  a.TestAccuracy,
		Training:      a.Training,
		Forest:        forest,
	}

	data, err := json.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
