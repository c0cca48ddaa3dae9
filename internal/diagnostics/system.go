// Package diagnostics collects host resource information for the doctor
// command. Everything is best-effort: a probe that fails leaves its fields
// zeroed instead of failing the whole collection.
package diagnostics

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jaypipes/ghw"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// GPUInfo describes one graphics device. Validity flags distinguish a
// genuine zero from an unavailable reading.
type GPUInfo struct {
	Name        string  `json:"name"`
	UtilPercent float64 `json:"util_percent,omitempty"`
	UtilValid   bool    `json:"util_valid"`
	MemTotalMB  float64 `json:"mem_total_mb,omitempty"`
	MemUsedMB   float64 `json:"mem_used_mb,omitempty"`
	MemValid    bool    `json:"mem_valid"`
}

// SystemInfo is one snapshot of host resource usage.
type SystemInfo struct {
	CPUModel   string  `json:"cpu_model"`
	CPUCores   int     `json:"cpu_cores"`
	CPUThreads int     `json:"cpu_threads"`

	MemTotalMB float64 `json:"mem_total_mb"`
	MemUsedMB  float64 `json:"mem_used_mb"`
	MemPercent float64 `json:"mem_percent"`

	DiskTotalGB float64 `json:"disk_total_gb"`
	DiskUsedGB  float64 `json:"disk_used_gb"`
	DiskPercent float64 `json:"disk_percent"`

	LoadAvg1  float64 `json:"load_avg_1"`
	LoadAvg5  float64 `json:"load_avg_5"`
	LoadAvg15 float64 `json:"load_avg_15"`

	GPUs []GPUInfo `json:"gpus,omitempty"`
}

// Collector gathers SystemInfo snapshots. Static hardware facts are probed
// once and cached.
type Collector struct {
	mu sync.Mutex

	probed     bool
	cpuModel   string
	cpuCores   int
	cpuThreads int
}

// NewCollector creates a collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Collect gathers a snapshot.
func (c *Collector) Collect() SystemInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	var info SystemInfo
	c.fillHardware(&info)

	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemTotalMB = float64(vm.Total) / 1024 / 1024
		info.MemUsedMB = float64(vm.Used) / 1024 / 1024
		info.MemPercent = vm.UsedPercent
	}
	if usage, err := disk.Usage(rootPath()); err == nil {
		info.DiskTotalGB = float64(usage.Total) / 1024 / 1024 / 1024
		info.DiskUsedGB = float64(usage.Used) / 1024 / 1024 / 1024
		info.DiskPercent = usage.UsedPercent
	}
	if avg, err := load.Avg(); err == nil {
		info.LoadAvg1 = avg.Load1
		info.LoadAvg5 = avg.Load5
		info.LoadAvg15 = avg.Load15
	}

	info.GPUs = queryGPUs()
	return info
}

func (c *Collector) fillHardware(info *SystemInfo) {
	if !c.probed {
		if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
			c.cpuModel = strings.TrimSpace(infos[0].ModelName)
		}
		if cores, err := cpu.Counts(false); err == nil {
			c.cpuCores = cores
		}
		if threads, err := cpu.Counts(true); err == nil {
			c.cpuThreads = threads
		}
		c.probed = true
	}
	info.CPUModel = c.cpuModel
	info.CPUCores = c.cpuCores
	info.CPUThreads = c.cpuThreads
}

// queryGPUs prefers nvidia-smi for live utilization, falling back to ghw
// for bare device identification.
func queryGPUs() []GPUInfo {
	if gpus := queryNvidiaSMI(); len(gpus) > 0 {
		return gpus
	}
	return queryGhw()
}

func queryNvidiaSMI() []GPUInfo {
	if _, err := exec.LookPath("nvidia-smi"); err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	cmd := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=name,utilization.gpu,memory.total,memory.used",
		"--format=csv,noheader,nounits")
	out, err := cmd.Output()
	if err != nil {
		return nil
	}
	return parseNvidiaCSV(string(out))
}

func parseNvidiaCSV(out string) []GPUInfo {
	var gpus []GPUInfo
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Split(line, ",")
		if len(fields) < 4 {
			continue
		}
		util, utilOK := parseFloat(fields[1])
		memTotal, totalOK := parseFloat(fields[2])
		memUsed, usedOK := parseFloat(fields[3])
		gpus = append(gpus, GPUInfo{
			Name:        strings.TrimSpace(fields[0]),
			UtilPercent: util,
			UtilValid:   utilOK,
			MemTotalMB:  memTotal,
			MemUsedMB:   memUsed,
			MemValid:    totalOK && usedOK,
		})
	}
	return gpus
}

func queryGhw() []GPUInfo {
	info, err := ghw.GPU()
	if err != nil || info == nil {
		return nil
	}
	gpus := make([]GPUInfo, 0, len(info.GraphicsCards))
	for _, card := range info.GraphicsCards {
		name := ""
		if card.DeviceInfo != nil {
			if card.DeviceInfo.Vendor != nil {
				name = card.DeviceInfo.Vendor.Name
			}
			if card.DeviceInfo.Product != nil {
				name = strings.TrimSpace(name + " " + card.DeviceInfo.Product.Name)
			}
		}
		if name == "" {
			name = fmt.Sprintf("GPU %d", card.Index)
		}
		gpus = append(gpus, GPUInfo{Name: name})
	}
	return gpus
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func rootPath() string {
	if runtime.GOOS == "windows" {
		if drive := os.Getenv("SystemDrive"); drive != "" {
			return drive + "\\"
		}
		return "C:\\"
	}
	return "/"
}
