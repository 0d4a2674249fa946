package models

import "time"

// CommandType enumerates the remote operations the fleet backend can issue.
type CommandType string

const (
	CmdReboot          CommandType = "Reboot"
	CmdShutdown        CommandType = "Shutdown"
	CmdRestartService  CommandType = "RestartService"
	CmdGetDiagnostics  CommandType = "GetDiagnostics"
	CmdUpdateConfig    CommandType = "UpdateConfig"
	CmdRunHealthCheck  CommandType = "RunHealthCheck"
	CmdCaptureSnapshot CommandType = "CaptureSnapshot"
	CmdFlushWAL        CommandType = "FlushWAL"
)

// CommandStatus tracks a command through its lifecycle:
// Pending -> Executing -> {Success, Failed, Timeout, Cancelled}.
type CommandStatus string

const (
	CmdPending   CommandStatus = "Pending"
	CmdExecuting CommandStatus = "Executing"
	CmdSuccess   CommandStatus = "Success"
	CmdFailed    CommandStatus = "Failed"
	CmdTimeout   CommandStatus = "Timeout"
	CmdCancelled CommandStatus = "Cancelled"
)

// RemoteCommand is an operator-issued command for one truck (TruckID set) or
// a fleet broadcast (FleetID set).
type RemoteCommand struct {
	ID          string         `json:"id"`
	CommandID   string         `json:"command_id"`
	TruckID     *string        `json:"truck_id"`
	FleetID     *string        `json:"fleet_id"`
	CommandType CommandType    `json:"command_type"`
	Parameters  map[string]any `json:"parameters"`
	IssuedAt    time.Time      `json:"issued_at"`
	Deadline    *time.Time     `json:"deadline"`
	RequiresAck bool           `json:"requires_ack"`
	Status      CommandStatus  `json:"status"`
	Result      map[string]any `json:"result"`
	Error       *string        `json:"error"`
	CompletedAt *time.Time     `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CreateRemoteCommandRequest is the payload for issuing a new command.
type CreateRemoteCommandRequest struct {
	TruckID     *string        `json:"truck_id"`
	FleetID     *string        `json:"fleet_id"`
	CommandType CommandType    `json:"command_type" binding:"required" validate:"required,oneof=Reboot Shutdown RestartService GetDiagnostics UpdateConfig RunHealthCheck CaptureSnapshot FlushWAL"`
	Parameters  map[string]any `json:"parameters"`
	Deadline    *time.Time     `json:"deadline"`
	RequiresAck bool           `json:"requires_ack"`
}

// UpdateRemoteCommandRequest advances a command's status.
type UpdateRemoteCommandRequest struct {
	Status *CommandStatus `json:"status"`
	Result map[string]any `json:"result"`
	Error  *string        `json:"error"`
}
