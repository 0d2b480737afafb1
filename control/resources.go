// control/resources.go
// Author: momentics <momentics@gmail.com>
//
// Process and host resource readings for the stats reporter and debug probes.

package control

import (
	"os"
	"sync"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ResourceUsage is one best-effort reading. Fields the platform cannot
// provide stay zero.
type ResourceUsage struct {
	RSS            uint64  `json:"rss_bytes"`
	CPUPercent     float64 `json:"cpu_percent"`
	Threads        int32   `json:"threads"`
	OpenFDs        int32   `json:"open_fds"`
	MemUsedPercent float64 `json:"host_mem_used_percent"`
}

// ResourceSampler reads the usage of the current process.
type ResourceSampler struct {
	mu   sync.Mutex
	proc *process.Process
}

// NewResourceSampler attaches to the running process.
func NewResourceSampler() (*ResourceSampler, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &ResourceSampler{proc: p}, nil
}

// Sample takes one reading. CPUPercent is averaged over the process lifetime.
func (rs *ResourceSampler) Sample() ResourceUsage {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	var u ResourceUsage
	if mi, err := rs.proc.MemoryInfo(); err == nil {
		u.RSS = mi.RSS
	}
	if pct, err := rs.proc.CPUPercent(); err == nil {
		u.CPUPercent = pct
	}
	if n, err := rs.proc.NumThreads(); err == nil {
		u.Threads = n
	}
	if n, err := rs.proc.NumFDs(); err == nil {
		u.OpenFDs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		u.MemUsedPercent = vm.UsedPercent
	}
	return u
}

// Fields flattens u for MetricsRegistry.Publish.
func (u ResourceUsage) Fields() map[string]any {
	return map[string]any{
		"rss_bytes":             u.RSS,
		"cpu_percent":           u.CPUPercent,
		"threads":               u.Threads,
		"open_fds":              u.OpenFDs,
		"host_mem_used_percent": u.MemUsedPercent,
	}
}

// Register exposes the reading as the "process.usage" probe.
func (rs *ResourceSampler) Register(dp *DebugProbes) {
	dp.RegisterProbe("process.usage", func() any { return rs.Sample() })
}
