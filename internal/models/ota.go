package models

import "time"

// UpdateTarget names the artifact an OTA update replaces.
type UpdateTarget string

const (
	TargetAgent    UpdateTarget = "Agent"
	TargetModel    UpdateTarget = "Model"
	TargetConfig   UpdateTarget = "Config"
	TargetFirmware UpdateTarget = "Firmware"
)

// UpdatePriority ranks how urgently an update should roll out.
type UpdatePriority string

const (
	PriorityCritical UpdatePriority = "Critical"
	PriorityHigh     UpdatePriority = "High"
	PriorityMedium   UpdatePriority = "Medium"
	PriorityLow      UpdatePriority = "Low"
)

// OtaStatus tracks an update through its pipeline:
// Pending -> Downloading -> Verifying -> Applying -> {Success, Failed, Rollback}.
type OtaStatus string

const (
	OtaPending     OtaStatus = "Pending"
	OtaDownloading OtaStatus = "Downloading"
	OtaVerifying   OtaStatus = "Verifying"
	OtaApplying    OtaStatus = "Applying"
	OtaSuccess     OtaStatus = "Success"
	OtaFailed      OtaStatus = "Failed"
	OtaRollback    OtaStatus = "Rollback"
)

// UpdateMetadata is operator-facing information about an update package.
type UpdateMetadata struct {
	Description           string   `json:"description"`
	Author                string   `json:"author"`
	ReleaseNotes          string   `json:"release_notes"`
	Compatibility         []string `json:"compatibility"`
	EstimatedApplyTimeSec int      `json:"estimated_apply_time_sec"`
}

// OtaUpdate is a signed software/model/config rollout targeting one truck
// (TruckID set) or a fleet (FleetID set).
type OtaUpdate struct {
	ID              string         `json:"id"`
	UpdateID        string         `json:"update_id"`
	TruckID         *string        `json:"truck_id"`
	FleetID         *string        `json:"fleet_id"`
	Version         string         `json:"version"`
	Target          UpdateTarget   `json:"target"`
	URL             string         `json:"url"`
	Checksum        string         `json:"checksum"`
	Signature       string         `json:"signature"`
	SizeBytes       int64          `json:"size_bytes"`
	Priority        UpdatePriority `json:"priority"`
	RequiresReboot  bool           `json:"requires_reboot"`
	Deadline        *time.Time     `json:"deadline"`
	Meta            UpdateMetadata `json:"meta"`
	Status          OtaStatus      `json:"status"`
	ProgressPercent float64        `json:"progress_percent"`
	StartedAt       *time.Time     `json:"started_at"`
	CompletedAt     *time.Time     `json:"completed_at"`
	LastError       *string        `json:"last_error"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// CreateOtaUpdateRequest is the payload for scheduling a new rollout.
type CreateOtaUpdateRequest struct {
	TruckID        *string        `json:"truck_id"`
	FleetID        *string        `json:"fleet_id"`
	Version        string         `json:"version" binding:"required" validate:"required"`
	Target         UpdateTarget   `json:"target" binding:"required" validate:"required,oneof=Agent Model Config Firmware"`
	URL            string         `json:"url" binding:"required" validate:"required,url"`
	Checksum       string         `json:"checksum" binding:"required" validate:"required"`
	Signature      string         `json:"signature" validate:"omitempty"`
	SizeBytes      int64          `json:"size_bytes" validate:"gte=0"`
	Priority       UpdatePriority `json:"priority" binding:"required" validate:"required,oneof=Critical High Medium Low"`
	RequiresReboot bool           `json:"requires_reboot"`
	Deadline       *time.Time     `json:"deadline"`
	Meta           UpdateMetadata `json:"meta"`
}

// UpdateOtaUpdateRequest advances an update's status and/or progress.
type UpdateOtaUpdateRequest struct {
	Status          *OtaStatus `json:"status"`
	ProgressPercent *float64   `json:"progress_percent" validate:"omitempty,gte=0,lte=100"`
	LastError       *string    `json:"last_error"`
}
