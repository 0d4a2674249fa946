package models

import "time"

// AlertSeverity orders alerts from informational to emergency.
type AlertSeverity string

const (
	SeverityInfo      AlertSeverity = "Info"
	SeverityWarning   AlertSeverity = "Warning"
	SeverityCritical  AlertSeverity = "Critical"
	SeverityEmergency AlertSeverity = "Emergency"
)

// AlertStatus tracks an alert through its lifecycle. Transitions only move
// forward: Triggered -> Acknowledged -> Resolved, with Suppressed as a
// terminal branch.
type AlertStatus string

const (
	AlertTriggered    AlertStatus = "Triggered"
	AlertAcknowledged AlertStatus = "Acknowledged"
	AlertResolved     AlertStatus = "Resolved"
	AlertSuppressed   AlertStatus = "Suppressed"
)

// AlertAction is a device-side response the edge agent attached to an alert.
type AlertAction struct {
	ActionID   string         `json:"action_id"`
	ActionType string         `json:"action_type"`
	Target     string         `json:"target"`
	Parameters map[string]any `json:"parameters"`
	ExecutedAt *time.Time     `json:"executed_at"`
	Success    bool           `json:"success"`
	Error      *string        `json:"error"`
}

// Alert is a safety or system event raised for a truck.
type Alert struct {
	ID             string         `json:"id"`
	AlertID        string         `json:"alert_id"`
	TruckID        string         `json:"truck_id"`
	AlertType      string         `json:"alert_type"`
	Severity       AlertSeverity  `json:"severity"`
	Message        string         `json:"message"`
	TriggeredAt    time.Time      `json:"triggered_at"`
	AcknowledgedAt *time.Time     `json:"acknowledged_at"`
	ResolvedAt     *time.Time     `json:"resolved_at"`
	Source         string         `json:"source"`
	Context        map[string]any `json:"context"`
	Actions        []AlertAction  `json:"actions"`
	Status         AlertStatus    `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// UpdateAlertRequest carries a status transition for an alert.
type UpdateAlertRequest struct {
	Status AlertStatus `json:"status" binding:"required"`
}
