package tui

import (
	"time"
)

// Config holds TUI configuration
type Config struct {
	ServerURL       string
	RefreshInterval time.Duration
	User            string
	Password        string
}

// Model represents the TUI state
type Model struct {
	config Config

	// Data from API
	health *HealthData
	status *StatusData

	// UI state
	width       int
	height      int
	loading     bool
	err         error
	lastUpdated time.Time
}

// HealthData represents model health from the /health endpoint
type HealthData struct {
	Status        string     `json:"status"`
	ModelLoaded   bool       `json:"model_loaded"`
	Version       string     `json:"version"`
	ModelLoadedAt *time.Time `json:"model_loaded_at"`
	FeatureCount  int        `json:"feature_count"`
	ClassCount    int        `json:"class_count"`
}

// StatusData represents runtime resource usage from the /status endpoint
type StatusData struct {
	CPU           CPUStatus     `json:"cpu"`
	Memory        MemoryStatus  `json:"memory"`
	Process       ProcessStatus `json:"process"`
	UptimeSeconds float64       `json:"uptime_seconds"`
}

type CPUStatus struct {
	UsagePercent float64 `json:"usage_percent"`
}

type MemoryStatus struct {
	UsagePercent float64 `json:"usage_percent"`
	TotalBytes   uint64  `json:"total_bytes"`
	UsedBytes    uint64  `json:"used_bytes"`
}

type ProcessStatus struct {
	PID           int32   `json:"pid"`
	RSSBytes      uint64  `json:"rss_bytes"`
	CPUPercent    float64 `json:"cpu_percent"`
	NumGoroutines int     `json:"goroutines"`
}

// NewModel creates a new TUI model
func NewModel(cfg Config) Model {
	return Model{
		config:  cfg,
		loading: true,
	}
}
