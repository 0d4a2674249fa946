package models

import "time"

// HealthState buckets a truck's overall condition. Derived from the resource
// snapshot so the bucket never contradicts the numbers it was computed from.
type HealthState string

const (
	HealthOk              HealthState = "Ok"
	HealthWarning         HealthState = "Warning"
	HealthCritical        HealthState = "Critical"
	HealthDegraded        HealthState = "Degraded"
	HealthShutdownPending HealthState = "ShutdownPending"
)

// ResourceUsage is a point-in-time snapshot of the truck computer's resources.
type ResourceUsage struct {
	CPUPercent        float64    `json:"cpu_percent"`
	CPUCores          int        `json:"cpu_cores"`
	MemoryPercent     float64    `json:"memory_percent"`
	MemoryUsedMB      int        `json:"memory_used_mb"`
	MemoryTotalMB     int        `json:"memory_total_mb"`
	MemoryAvailableMB int        `json:"memory_available_mb"`
	SwapPercent       float64    `json:"swap_percent"`
	DiskPercent       float64    `json:"disk_percent"`
	DiskUsedGB        int        `json:"disk_used_gb"`
	DiskTotalGB       int        `json:"disk_total_gb"`
	DiskAvailableGB   int        `json:"disk_available_gb"`
	TemperatureC      float64    `json:"temperature_c"`
	ThermalThrottling bool       `json:"thermal_throttling"`
	UptimeSec         int64      `json:"uptime_sec"`
	LoadAverage       [3]float64 `json:"load_average"`
}

// TaskHealth reports liveness of one agent subsystem task.
type TaskHealth struct {
	Name            string     `json:"name"`
	IsAlive         bool       `json:"is_alive"`
	LastSeenMs      int64      `json:"last_seen_ms"`
	CPUUsagePercent float64    `json:"cpu_usage_percent"`
	MemoryUsageMB   int        `json:"memory_usage_mb"`
	Restarts        int        `json:"restarts"`
	LastRestart     *time.Time `json:"last_restart"`
}

// HealthAlert is a threshold breach raised by the on-truck health monitor.
type HealthAlert struct {
	AlertID           string        `json:"alert_id"`
	AlertType         string        `json:"alert_type"`
	Severity          AlertSeverity `json:"severity"`
	Message           string        `json:"message"`
	TriggeredAt       time.Time     `json:"triggered_at"`
	Source            string        `json:"source"`
	RecommendedAction string        `json:"recommended_action"`
}

// RemediationAction records a load-shedding step the agent took on its own.
type RemediationAction struct {
	ActionID     string         `json:"action_id"`
	ActionType   string         `json:"action_type"`
	TargetModule string         `json:"target_module"`
	Parameters   map[string]any `json:"parameters"`
	ExecutedAt   time.Time      `json:"executed_at"`
	Success      bool           `json:"success"`
	Message      string         `json:"message"`
}

// HealthStatus is one health report from a truck's agent.
type HealthStatus struct {
	ID           string              `json:"id"`
	TruckID      string              `json:"truck_id"`
	Timestamp    time.Time           `json:"timestamp"`
	Status       HealthState         `json:"status"`
	Resources    ResourceUsage       `json:"resources"`
	Tasks        []TaskHealth        `json:"tasks"`
	Alerts       []HealthAlert       `json:"alerts"`
	ActionsTaken []RemediationAction `json:"actions_taken"`
	Meta         map[string]any      `json:"meta"`
	CreatedAt    time.Time           `json:"created_at"`
}

// HealthStateFor derives the bucket from a resource snapshot using the same
// thresholds everywhere a bucket is computed or displayed.
func HealthStateFor(r ResourceUsage) HealthState {
	switch {
	case r.CPUPercent > 85 || r.MemoryPercent > 85 || r.DiskPercent > 90 || r.TemperatureC > 75:
		return HealthCritical
	case r.CPUPercent > 75 || r.MemoryPercent > 75 || r.DiskPercent > 80 || r.TemperatureC > 65:
		return HealthWarning
	case r.CPUPercent > 65 || r.MemoryPercent > 65 || r.DiskPercent > 70:
		return HealthDegraded
	}
	return HealthOk
}
