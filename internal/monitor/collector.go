package monitor

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Collector produces resource snapshots on demand. Inference requests are
// O(1), so there is no background sampling loop; each /status call collects
// fresh values.
type Collector struct {
	startedAt time.Time
	proc      *process.Process
}

func NewCollector() (*Collector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to open own process: %w", err)
	}

	return &Collector{
		startedAt: time.Now(),
		proc:      proc,
	}, nil
}

// Snapshot collects current host and process resource usage.
func (c *Collector) Snapshot() (*Snapshot, error) {
	snap := &Snapshot{
		UptimeSeconds: time.Since(c.startedAt).Seconds(),
		Timestamp:     time.Now(),
	}

	percentages, err := cpu.Percent(0, false)
	if err != nil {
		return nil, fmt.Errorf("failed to collect cpu usage: %w", err)
	}
	if len(percentages) > 0 {
		snap.CPU.UsagePercent = percentages[0]
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to collect memory usage: %w", err)
	}
	snap.Memory = MemoryState{
		UsedBytes:    vm.Used,
		TotalBytes:   vm.Total,
		UsagePercent: vm.UsedPercent,
	}

	snap.Process.PID = c.proc.Pid
	snap.Process.NumGoroutines = runtime.NumGoroutine()

	if memInfo, err := c.proc.MemoryInfo(); err == nil {
		snap.Process.RSSBytes = memInfo.RSS
	}
	if cpuPct, err := c.proc.CPUPercent(); err == nil {
		snap.Process.CPUPercent = cpuPct
	}

	return snap, nil
}
