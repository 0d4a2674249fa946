// Package manager holds the server-side supporting services: the account
// store behind /auth, the host metrics sampler behind /api/system/metrics,
// and the live feed that pushes simulated fleet frames to connected clients.
package manager

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"

	"fleetops/internal/models"
)

const sampleInterval = 5 * time.Second

// Sampler periodically collects host metrics for the dashboard status page.
type Sampler struct {
	mu       sync.RWMutex
	snapshot *models.SystemMetrics

	lastCPUTotal float64
	lastCPUIdle  float64
	lastNetRecv  uint64
	lastNetSent  uint64
	lastNetAt    time.Time

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewSampler returns an idle sampler; call Start to begin collecting.
func NewSampler() *Sampler {
	return &Sampler{}
}

// Start launches the background sampling loop. Starting twice is a no-op.
func (s *Sampler) Start() {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(sampleInterval)
		defer ticker.Stop()
		ctx := context.Background()
		s.refresh(ctx)
		for {
			select {
			case <-ticker.C:
				s.refresh(ctx)
			case <-stop:
				return
			}
		}
	}()
}

// Stop halts the sampling loop and waits for shutdown.
func (s *Sampler) Stop() {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()
	if stop != nil {
		close(stop)
	}
	s.wg.Wait()
}

// Snapshot returns the last collected metrics, nil before the first sample.
func (s *Sampler) Snapshot() *models.SystemMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil
	}
	cp := *s.snapshot
	return &cp
}

// HealthPercent returns the most recent health score (0-100).
func (s *Sampler) HealthPercent() float64 {
	snap := s.Snapshot()
	if snap == nil {
		return 100
	}
	return clampFloat(snap.HealthPercent, 0, 100)
}

func (s *Sampler) refresh(ctx context.Context) {
	timesStats, err := cpu.TimesWithContext(ctx, false)
	if err != nil || len(timesStats) == 0 {
		return
	}
	total := cpuTotal(timesStats[0])
	idle := timesStats[0].Idle + timesStats[0].Iowait
	deltaTotal, deltaIdle, hasPrev := s.updateCPUSample(total, idle)

	var cpuPercent float64
	if hasPrev && deltaTotal > 0 {
		used := deltaTotal - deltaIdle
		if used < 0 {
			used = 0
		}
		cpuPercent = clampFloat((used/deltaTotal)*100, 0, 100)
	}

	memoryStats, _ := mem.VirtualMemoryWithContext(ctx)
	var memPercent float64
	var memUsed, memTotal uint64
	if memoryStats != nil {
		memPercent = clampFloat(memoryStats.UsedPercent, 0, 100)
		memUsed = memoryStats.Used
		memTotal = memoryStats.Total
	}

	diskStats, _ := disk.UsageWithContext(ctx, "/")
	var diskPercent float64
	var diskUsed, diskTotal uint64
	if diskStats != nil {
		diskPercent = clampFloat(diskStats.UsedPercent, 0, 100)
		diskUsed = diskStats.Used
		diskTotal = diskStats.Total
	}

	ioCounters, _ := net.IOCountersWithContext(ctx, true)
	var netRecv, netSent uint64
	for _, ctr := range ioCounters {
		netRecv += ctr.BytesRecv
		netSent += ctr.BytesSent
	}

	loadStats, _ := load.AvgWithContext(ctx)
	var load1, load5, load15 float64
	if loadStats != nil {
		load1 = loadStats.Load1
		load5 = loadStats.Load5
		load15 = loadStats.Load15
	}

	hostInfo, _ := host.InfoWithContext(ctx)
	var uptimeSeconds, processCount uint64
	if hostInfo != nil {
		uptimeSeconds = hostInfo.Uptime
		processCount = hostInfo.Procs
	}

	sampledAt := time.Now().UTC()
	netInRate, netOutRate := s.computeNetworkRates(netRecv, netSent, sampledAt)

	snapshot := &models.SystemMetrics{
		CPUPercent:           cpuPercent,
		MemoryPercent:        memPercent,
		MemoryUsedBytes:      memUsed,
		MemoryTotalBytes:     memTotal,
		DiskPercent:          diskPercent,
		DiskUsedBytes:        diskUsed,
		DiskTotalBytes:       diskTotal,
		NetworkInboundBytes:  netRecv,
		NetworkOutboundBytes: netSent,
		NetworkInboundBps:    netInRate,
		NetworkOutboundBps:   netOutRate,
		Load1:                load1,
		Load5:                load5,
		Load15:               load15,
		UptimeSeconds:        uptimeSeconds,
		ProcessCount:         processCount,
		HealthPercent:        computeHealth(cpuPercent, memPercent, diskPercent),
		SampledAt:            sampledAt,
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
}

func (s *Sampler) updateCPUSample(total, idle float64) (float64, float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deltaTotal := total - s.lastCPUTotal
	deltaIdle := idle - s.lastCPUIdle
	hasPrev := s.lastCPUTotal > 0
	s.lastCPUTotal = total
	s.lastCPUIdle = idle
	return deltaTotal, deltaIdle, hasPrev
}

func (s *Sampler) computeNetworkRates(recv, sent uint64, now time.Time) (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var inbound, outbound float64
	if !s.lastNetAt.IsZero() && now.After(s.lastNetAt) {
		elapsed := now.Sub(s.lastNetAt).Seconds()
		if elapsed > 0 {
			if recv >= s.lastNetRecv {
				inbound = float64(recv-s.lastNetRecv) / elapsed
			}
			if sent >= s.lastNetSent {
				outbound = float64(sent-s.lastNetSent) / elapsed
			}
		}
	}
	s.lastNetRecv = recv
	s.lastNetSent = sent
	s.lastNetAt = now
	return inbound, outbound
}

func cpuTotal(stat cpu.TimesStat) float64 {
	return stat.User + stat.System + stat.Nice + stat.Idle + stat.Iowait + stat.Irq + stat.Softirq + stat.Steal + stat.Guest + stat.GuestNice
}

// computeHealth scores the host by its most pressured resource.
func computeHealth(cpu, mem, disk float64) float64 {
	maxUsage := 0.0
	for _, v := range []float64{cpu, mem, disk} {
		if v <= 0 {
			continue
		}
		if v > maxUsage {
			maxUsage = v
		}
	}
	if maxUsage == 0 {
		return 100
	}
	return clampFloat(100-maxUsage, 0, 100)
}

func clampFloat(val, min, max float64) float64 {
	if math.IsNaN(val) {
		return min
	}
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
