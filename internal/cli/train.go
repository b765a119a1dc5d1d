package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/irisd/internal/dataset"
	"github.com/haskel/irisd/internal/model"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a model artifact",
	Long: `Train a random forest on the embedded iris dataset and write the
artifact file consumed by 'irisd serve'.

Examples:
  irisd train
  irisd train --output model.json --trees 200 --seed 42`,
	RunE: runTrain,
}

var (
	trainOutput   string
	trainTrees    int
	trainMaxDepth int
	trainTestSize float64
	trainSeed     int64
)

func init() {
	defaults := model.DefaultTrainConfig()

	trainCmd.Flags().StringVarP(&trainOutput, "output", "o", "model.json", "artifact output path")
	trainCmd.Flags().IntVar(&trainTrees, "trees", defaults.NumTrees, "number of trees in the forest")
	trainCmd.Flags().IntVar(&trainMaxDepth, "max-depth", defaults.MaxDepth, "maximum tree depth")
	trainCmd.Flags().Float64Var(&trainTestSize, "test-size", defaults.TestSize, "held-out fraction for accuracy evaluation")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", defaults.Seed, "random seed for reproducibility")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	features, labels, err := dataset.Load()
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	cfg := model.DefaultTrainConfig()
	cfg.NumTrees = trainTrees
	cfg.MaxDepth = trainMaxDepth
	cfg.TestSize = trainTestSize
	cfg.Seed = trainSeed

	result, err := model.Train(features, labels, len(dataset.ClassLabels), cfg)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	artifact := &model.Artifact{
		Classifier:   result.Forest,
		FeatureNames: dataset.FeatureNames,
		ClassLabels:  dataset.ClassLabels,
		TrainedAt:    time.Now(),
		TestAccuracy: result.TestAccuracy,
		Training: model.TrainingMeta{
			Seed:     cfg.Seed,
			TestSize: cfg.TestSize,
			NumTrees: cfg.NumTrees,
			MaxDepth: cfg.MaxDepth,
		},
	}

	if err := artifact.Save(trainOutput); err != nil {
		return fmt.Errorf("failed to save artifact: %w", err)
	}

	summary := map[string]any{
		"output":        trainOutput,
		"test_accuracy": result.TestAccuracy,
		"train_samples": result.TrainSamples,
		"test_samples":  result.TestSamples,
		"classes":       dataset.ClassLabels,
		"features":      dataset.FeatureNames,
	}

	if jsonOut {
		data, err := json.Marshal(summary)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Artifact written to %s\n", trainOutput)
	fmt.Printf("  Trees:         %d (max depth %d)\n", cfg.NumTrees, cfg.MaxDepth)
	fmt.Printf("  Train samples: %d\n", result.TrainSamples)
	fmt.Printf("  Test samples:  %d\n", result.TestSamples)
	fmt.Printf("  Test accuracy: %.3f\n", result.TestAccuracy)
	return nil
}
