package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// InitResourceLimits raises the open file limit. Every frame is written as a
// separate file and several are open at once while rendering in parallel.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not read the open file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not raise the open file limit: %v", err)
	} else {
		fmt.Printf("[*] Open file limit raised to %d\n", rLimit.Cur)
	}
}

// DefaultWorkers is the number of frames rendered at once. It counts
// physical cores because every frame already traces its rows in parallel.
func DefaultWorkers() int {
	n, err := cpu.Counts(false)
	if err != nil || n < 1 {
		n = runtime.NumCPU()
	}
	return n
}

// HostStats is a snapshot of the machine for the performance report
type HostStats struct {
	LogicalCPUs  int
	PhysicalCPUs int
	TotalMemory  uint64
	UsedPercent  float64
	ProcessRSS   uint64
}

// ReadHostStats collects what gopsutil can tell about the host. Fields it
// cannot read stay zero.
func ReadHostStats() HostStats {
	var s HostStats
	if n, err := cpu.Counts(true); err == nil {
		s.LogicalCPUs = n
	}
	if n, err := cpu.Counts(false); err == nil {
		s.PhysicalCPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.TotalMemory = vm.Total
		s.UsedPercent = vm.UsedPercent
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := p.MemoryInfo(); err == nil {
			s.ProcessRSS = info.RSS
		}
	}
	return s
}

func (s HostStats) String() string {
	return fmt.Sprintf("CPU: %d logical / %d physical | RAM: %.1f GiB (%.0f%% used) | RSS: %.0f MiB",
		s.LogicalCPUs, s.PhysicalCPUs,
		float64(s.TotalMemory)/(1<<30), s.UsedPercent,
		float64(s.ProcessRSS)/(1<<20))
}

// GetBestH264Encoder picks a hardware encoder when ffmpeg offers one
func GetBestH264Encoder() (string, string) {
	// Priority:
	// 1. macOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)
	encoders := []struct {
		name string
		args string
	}{
		{"h264_videotoolbox", ""},
		{"h264_nvenc", ""},
	}

	out, err := exec.Command("ffmpeg", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264", ""
	}
	for _, enc := range encoders {
		if strings.Contains(string(out), enc.name) {
			return enc.name, enc.args
		}
	}

	return "libx264", ""
}

// DefaultQuality is a sensible quality value for each encoder
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // bitrate = Q*100 kbit/s
	case "h264_nvenc":
		return 28
	default:
		return 23 // x264 CRF
	}
}
