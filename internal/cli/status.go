package cli

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Get server runtime resource usage",
	Long:  `Query the running irisd server for current resource utilization.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := NewClient()

	data, status, err := client.Get("/status")
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if status != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", status, string(data))
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	// Pretty print
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return err
	}

	fmt.Println("=== Server Status ===")

	if cpu, ok := result["cpu"].(map[string]any); ok {
		fmt.Printf("\nCPU:\n")
		fmt.Printf("  Usage: %.1f%%\n", cpu["usage_percent"])
	}

	if mem, ok := result["memory"].(map[string]any); ok {
		fmt.Printf("\nMemory:\n")
		fmt.Printf("  Usage: %.1f%%\n", mem["usage_percent"])
		if total, ok := mem["total_bytes"].(float64); ok {
			fmt.Printf("  Total: %.1f GB\n", total/1024/1024/1024)
		}
		if used, ok := mem["used_bytes"].(float64); ok {
			fmt.Printf("  Used:  %.1f GB\n", used/1024/1024/1024)
		}
	}

	if proc, ok := result["process"].(map[string]any); ok {
		fmt.Printf("\nProcess:\n")
		fmt.Printf("  PID: %.0f\n", proc["pid"])
		if rss, ok := proc["rss_bytes"].(float64); ok {
			fmt.Printf("  RSS: %.1f MB\n", rss/1024/1024)
		}
		fmt.Printf("  Goroutines: %.0f\n", proc["goroutines"])
	}

	if uptime, ok := result["uptime_seconds"].(float64); ok {
		fmt.Printf("\nUptime: %.0fs\n", uptime)
	}

	return nil
}
