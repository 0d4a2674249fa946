package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleetops/internal/models"
)

var (
	otaTargets    = []models.UpdateTarget{models.TargetAgent, models.TargetModel, models.TargetConfig, models.TargetFirmware}
	otaPriorities = []models.UpdatePriority{models.PriorityCritical, models.PriorityHigh, models.PriorityMedium, models.PriorityLow}
	otaStatuses   = []models.OtaStatus{
		models.OtaPending, models.OtaDownloading, models.OtaVerifying, models.OtaApplying,
		models.OtaSuccess, models.OtaFailed, models.OtaRollback,
	}
	commandTypes = []models.CommandType{
		models.CmdReboot, models.CmdShutdown, models.CmdRestartService,
		models.CmdGetDiagnostics, models.CmdUpdateConfig, models.CmdRunHealthCheck,
		models.CmdCaptureSnapshot, models.CmdFlushWAL,
	}
	commandStatuses = []models.CommandStatus{
		models.CmdPending, models.CmdExecuting, models.CmdSuccess,
		models.CmdFailed, models.CmdTimeout, models.CmdCancelled,
	}
)

// targetTrucks draws the audience for a fleet record: ~30% of the time the
// whole fleet, otherwise a small random subset. A single-truck audience sets
// TruckID; a broader one sets FleetID.
func (g *Seeder) targetTrucks(trucks []models.Truck) (truckID, fleetID *string) {
	if g.rng.Float64() > 0.7 {
		id := uuid.NewString()
		return nil, &id
	}
	n := 1 + g.rng.IntN(3)
	if n == 1 {
		id := trucks[g.rng.IntN(len(trucks))].ID
		return &id, nil
	}
	id := uuid.NewString()
	return nil, &id
}

var updateDescriptions = map[models.UpdateTarget]map[models.UpdatePriority]string{
	models.TargetAgent: {
		models.PriorityCritical: "Critical security update - apply immediately",
		models.PriorityHigh:     "Important bug fixes and performance improvements",
		models.PriorityMedium:   "New features and minor improvements",
		models.PriorityLow:      "Cosmetic changes and documentation updates",
	},
	models.TargetModel: {
		models.PriorityCritical: "Critical model update - improved accuracy and safety",
		models.PriorityHigh:     "Improved model performance and reduced false positives",
		models.PriorityMedium:   "Added support for new scenarios",
		models.PriorityLow:      "Minor model tweaks and optimizations",
	},
	models.TargetConfig: {
		models.PriorityCritical: "Critical configuration changes - apply immediately",
		models.PriorityHigh:     "Important configuration updates for better performance",
		models.PriorityMedium:   "New configuration options and defaults",
		models.PriorityLow:      "Minor configuration tweaks",
	},
	models.TargetFirmware: {
		models.PriorityCritical: "Critical firmware update - apply immediately",
		models.PriorityHigh:     "Important firmware improvements and bug fixes",
		models.PriorityMedium:   "New firmware features and optimizations",
		models.PriorityLow:      "Minor firmware tweaks",
	},
}

// generateOtaUpdates produces 5-15 fleet rollouts. Lifecycle timestamps and
// progress follow the drawn status: terminal statuses carry completed_at and
// 100% progress, in-flight statuses a partial percentage.
func (g *Seeder) generateOtaUpdates(trucks []models.Truck) []models.OtaUpdate {
	n := 5 + g.rng.IntN(11)
	updates := make([]models.OtaUpdate, 0, n)
	for i := 0; i < n; i++ {
		target := otaTargets[g.rng.IntN(len(otaTargets))]
		priority := otaPriorities[g.rng.IntN(len(otaPriorities))]
		status := otaStatuses[g.rng.IntN(len(otaStatuses))]
		createdAt := g.pastTime(30 * 24 * time.Hour)
		truckID, fleetID := g.targetTrucks(trucks)

		var startedAt, completedAt *time.Time
		if status != models.OtaPending {
			t := createdAt.Add(time.Duration(g.rng.Float64() * float64(time.Hour)))
			startedAt = &t
		}
		done := status == models.OtaSuccess || status == models.OtaFailed || status == models.OtaRollback
		if done {
			t := startedAt.Add(time.Duration(g.rng.Float64() * float64(2*time.Hour)))
			completedAt = &t
		}
		progress := models.ClampPercent(g.rng.Float64() * 100)
		if done {
			progress = 100
		}
		var lastError *string
		if status == models.OtaFailed {
			msg := "Download failed: network error"
			lastError = &msg
		}
		var deadline *time.Time
		if g.rng.Float64() > 0.5 {
			t := time.Now().UTC().Add(7 * 24 * time.Hour)
			deadline = &t
		}
		updatedAt := createdAt
		if completedAt != nil {
			updatedAt = *completedAt
		} else if startedAt != nil {
			updatedAt = *startedAt
		}

		updates = append(updates, models.OtaUpdate{
			ID:             uuid.NewString(),
			UpdateID:       "UPDATE-" + uuid.NewString()[:8],
			TruckID:        truckID,
			FleetID:        fleetID,
			Version:        fmt.Sprintf("2.%d.%d", g.rng.IntN(10), g.rng.IntN(10)),
			Target:         target,
			URL:            fmt.Sprintf("https://updates.fleetops.local/%s-%s.bin", strings.ToLower(string(target)), uuid.NewString()[:8]),
			Checksum:       "sha256:" + uuid.NewString()[:16],
			Signature:      "sig:" + uuid.NewString(),
			SizeBytes:      1<<20 + g.rng.Int64N(99<<20),
			Priority:       priority,
			RequiresReboot: target == models.TargetFirmware || g.rng.IntN(2) == 1,
			Deadline:       deadline,
			Meta: models.UpdateMetadata{
				Description:           updateDescriptions[target][priority],
				Author:                g.pick([]string{"John Doe", "Jane Smith", "Bob Johnson"}),
				ReleaseNotes:          "Release notes for build " + uuid.NewString()[:8],
				Compatibility:         []string{"Model-X", "Model-Y", "Model-Z"},
				EstimatedApplyTimeSec: 300 + g.rng.IntN(900),
			},
			Status:          status,
			ProgressPercent: progress,
			StartedAt:       startedAt,
			CompletedAt:     completedAt,
			LastError:       lastError,
			CreatedAt:       createdAt,
			UpdatedAt:       updatedAt,
		})
	}
	return updates
}

// generateCommands produces 10-20 remote commands with parameters and
// results matching their type, and completion timestamps matching status.
func (g *Seeder) generateCommands(trucks []models.Truck) []models.RemoteCommand {
	n := 10 + g.rng.IntN(11)
	commands := make([]models.RemoteCommand, 0, n)
	for i := 0; i < n; i++ {
		cmdType := commandTypes[g.rng.IntN(len(commandTypes))]
		status := commandStatuses[g.rng.IntN(len(commandStatuses))]
		issuedAt := g.pastTime(7 * 24 * time.Hour)
		truckID, fleetID := g.targetTrucks(trucks)

		var completedAt *time.Time
		if models.TerminalCommand(status) {
			t := issuedAt.Add(time.Duration(g.rng.Float64() * float64(time.Hour)))
			completedAt = &t
		}
		var result map[string]any
		if status == models.CmdSuccess {
			result = commandResult(cmdType)
		}
		var cmdErr *string
		if status == models.CmdFailed {
			msg := "Command execution failed: timeout"
			cmdErr = &msg
		}
		var deadline *time.Time
		if g.rng.Float64() > 0.5 {
			t := time.Now().UTC().Add(24 * time.Hour)
			deadline = &t
		}
		updatedAt := issuedAt
		if completedAt != nil {
			updatedAt = *completedAt
		}

		commands = append(commands, models.RemoteCommand{
			ID:          uuid.NewString(),
			CommandID:   "CMD-" + uuid.NewString()[:8],
			TruckID:     truckID,
			FleetID:     fleetID,
			CommandType: cmdType,
			Parameters:  commandParameters(cmdType),
			IssuedAt:    issuedAt,
			Deadline:    deadline,
			RequiresAck: g.rng.IntN(2) == 1,
			Status:      status,
			Result:      result,
			Error:       cmdErr,
			CompletedAt: completedAt,
			CreatedAt:   issuedAt,
			UpdatedAt:   updatedAt,
		})
	}
	return commands
}

func commandParameters(t models.CommandType) map[string]any {
	switch t {
	case models.CmdReboot:
		return map[string]any{"reason": "scheduled_maintenance", "delay_seconds": 30}
	case models.CmdShutdown:
		return map[string]any{"reason": "system_update", "delay_seconds": 60}
	case models.CmdRestartService:
		return map[string]any{"service": "ml_engine", "timeout_seconds": 30}
	case models.CmdGetDiagnostics:
		return map[string]any{"detail_level": "full", "include_logs": true}
	case models.CmdUpdateConfig:
		return map[string]any{"config": map[string]any{"ml_edge": map[string]any{"enable_drowsiness": true}}}
	case models.CmdRunHealthCheck:
		return map[string]any{"check_type": "full", "timeout_seconds": 60}
	case models.CmdCaptureSnapshot:
		return map[string]any{"include_logs": true, "include_config": true}
	case models.CmdFlushWAL:
		return map[string]any{"force": true}
	}
	return map[string]any{}
}

func commandResult(t models.CommandType) map[string]any {
	switch t {
	case models.CmdReboot:
		return map[string]any{"success": true, "message": "System will reboot in 30 seconds"}
	case models.CmdShutdown:
		return map[string]any{"success": true, "message": "System will shutdown in 60 seconds"}
	case models.CmdRestartService:
		return map[string]any{"success": true, "message": "Service restarted successfully", "service": "ml_engine"}
	case models.CmdGetDiagnostics:
		return map[string]any{"success": true, "message": "Diagnostics collected successfully"}
	case models.CmdUpdateConfig:
		return map[string]any{"success": true, "message": "Configuration updated successfully"}
	case models.CmdRunHealthCheck:
		return map[string]any{"success": true, "message": "Health check completed successfully"}
	case models.CmdCaptureSnapshot:
		return map[string]any{"success": true, "message": "Snapshot captured successfully"}
	case models.CmdFlushWAL:
		return map[string]any{"success": true, "message": "WAL flushed successfully"}
	}
	return map[string]any{"success": true, "message": "Command executed successfully"}
}
