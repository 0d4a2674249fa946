package models

import "time"

// SystemMetrics is a sampled snapshot of the dashboard host itself, shown on
// the operations status page alongside the fleet data.
type SystemMetrics struct {
	CPUPercent           float64   `json:"cpu_percent"`
	MemoryPercent        float64   `json:"memory_percent"`
	MemoryUsedBytes      uint64    `json:"memory_used_bytes"`
	MemoryTotalBytes     uint64    `json:"memory_total_bytes"`
	DiskPercent          float64   `json:"disk_percent"`
	DiskUsedBytes        uint64    `json:"disk_used_bytes"`
	DiskTotalBytes       uint64    `json:"disk_total_bytes"`
	NetworkInboundBytes  uint64    `json:"network_inbound_bytes"`
	NetworkOutboundBytes uint64    `json:"network_outbound_bytes"`
	NetworkInboundBps    float64   `json:"network_inbound_bps"`
	NetworkOutboundBps   float64   `json:"network_outbound_bps"`
	Load1                float64   `json:"load_1"`
	Load5                float64   `json:"load_5"`
	Load15               float64   `json:"load_15"`
	UptimeSeconds        uint64    `json:"uptime_seconds"`
	ProcessCount         uint64    `json:"process_count"`
	HealthPercent        float64   `json:"health_percent"`
	SampledAt            time.Time `json:"sampled_at"`
}
