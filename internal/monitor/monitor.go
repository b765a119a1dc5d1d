package monitor

import "time"

type CPUState struct {
	UsagePercent float64 `json:"usage_percent"`
}

type MemoryState struct {
	UsedBytes    uint64  `json:"used_bytes"`
	TotalBytes   uint64  `json:"total_bytes"`
	UsagePercent float64 `json:"usage_percent"`
}

type ProcessState struct {
	PID           int32   `json:"pid"`
	RSSBytes      uint64  `json:"rss_bytes"`
	CPUPercent    float64 `json:"cpu_percent"`
	NumGoroutines int     `json:"goroutines"`
}

// Snapshot is a point-in-time view of host and process resource usage.
type Snapshot struct {
	CPU           CPUState     `json:"cpu"`
	Memory        MemoryState  `json:"memory"`
	Process       ProcessState `json:"process"`
	UptimeSeconds float64      `json:"uptime_seconds"`
	Timestamp     time.Time    `json:"timestamp"`
}
