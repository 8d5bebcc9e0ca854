package system

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostInfo is the machine summary printed at startup and stored with each
// render run.
type HostInfo struct {
	Platform    string
	Arch        string
	LogicalCPUs int
	TotalMemory uint64
	AvailMemory uint64
}

// Host gathers HostInfo. Fields gopsutil cannot read fall back to runtime
// values or zero.
func Host() HostInfo {
	info := HostInfo{
		Platform:    runtime.GOOS,
		Arch:        runtime.GOARCH,
		LogicalCPUs: runtime.NumCPU(),
	}
	if h, err := host.Info(); err == nil {
		if h.Platform != "" {
			info.Platform = h.Platform + " " + h.PlatformVersion
		}
		if h.KernelArch != "" {
			info.Arch = h.KernelArch
		}
	}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		info.LogicalCPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
		info.AvailMemory = vm.Available
	}
	return info
}

// RecommendedWorkers sizes the frame pool: one worker per CPU, capped so
// that in-flight frames use at most half of the available memory.
func (h HostInfo) RecommendedWorkers(frameBytes, framesPerWorker int) int {
	workers := h.LogicalCPUs
	if workers < 1 {
		workers = 1
	}
	if h.AvailMemory == 0 || frameBytes <= 0 || framesPerWorker <= 0 {
		return workers
	}
	perWorker := uint64(frameBytes) * uint64(framesPerWorker)
	if byMem := int(h.AvailMemory / 2 / perWorker); byMem < workers {
		workers = max(byMem, 1)
	}
	return workers
}
