package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server and model health",
	Long:  `Query a running irisd server for its health status.`,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

type healthResponse struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"model_loaded"`
	Version      string `json:"version"`
	FeatureCount int    `json:"feature_count"`
	ClassCount   int    `json:"class_count"`
}

func runHealth(cmd *cobra.Command, args []string) error {
	client := NewClient()

	data, status, err := client.Get("/health")
	if err != nil {
		return fmt.Errorf("failed to check health: %w", err)
	}

	if jsonOut {
		fmt.Println(string(data))
	} else {
		var resp healthResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}

		if resp.Status == "ok" {
			fmt.Printf("✓ Server is healthy (version %s)\n", resp.Version)
			fmt.Printf("  Model loaded: %d features, %d classes\n", resp.FeatureCount, resp.ClassCount)
		} else {
			fmt.Printf("✗ Server is degraded: model not loaded\n")
		}
	}

	// Non-2xx means degraded; propagate for scripting
	if status != http.StatusOK {
		os.Exit(1)
	}

	return nil
}
