package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict <f1> <f2> <f3> <f4>",
	Short: "Classify a feature vector",
	Long: `Send a feature vector to a running irisd server and print the
predicted class.

Examples:
  irisd predict 5.1 3.5 1.4 0.2
  irisd predict 6.7 3.0 5.2 2.3 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
}

type predictRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	PredictedClass string             `json:"predicted_class"`
	Probabilities  map[string]float64 `json:"probabilities"`
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func runPredict(cmd *cobra.Command, args []string) error {
	features := make([]float64, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("invalid feature value %q: %w", arg, err)
		}
		features = append(features, v)
	}

	client := NewClient()

	data, status, err := client.Post("/predict", predictRequest{Features: features})
	if err != nil {
		return fmt.Errorf("failed to predict: %w", err)
	}

	if status != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("server rejected request (%s): %s", apiErr.Error, apiErr.Message)
		}
		return fmt.Errorf("server returned status %d: %s", status, string(data))
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	var resp predictResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("Predicted class: %s\n", resp.PredictedClass)
	fmt.Println("Probabilities:")
	for label, p := range resp.Probabilities {
		fmt.Printf("  %-12s %.3f\n", label, p)
	}
	return nil
}
