package seed

import (
	"time"

	"github.com/google/uuid"

	"fleetops/internal/models"
)

var alertTypes = []string{
	"DrowsyDriver", "LaneDeparture", "CargoTamper",
	"HarshBraking", "RapidAcceleration", "OverSpeeding",
	"HighTemperature", "LowDiskSpace", "HighCpuUsage",
}

var alertSeverities = []models.AlertSeverity{
	models.SeverityInfo, models.SeverityWarning, models.SeverityCritical, models.SeverityEmergency,
}

var alertStatuses = []models.AlertStatus{
	models.AlertTriggered, models.AlertAcknowledged, models.AlertResolved,
}

// alertMessages maps type and severity to the operator-facing message, same
// wording the UI shows in alert cards.
var alertMessages = map[string]map[models.AlertSeverity]string{
	"DrowsyDriver": {
		models.SeverityInfo:      "Driver showing signs of drowsiness",
		models.SeverityWarning:   "Driver drowsiness detected - monitor closely",
		models.SeverityCritical:  "Driver drowsiness detected - immediate attention required",
		models.SeverityEmergency: "Driver asleep at wheel - emergency stop required",
	},
	"LaneDeparture": {
		models.SeverityInfo:      "Minor lane departure detected",
		models.SeverityWarning:   "Lane departure detected - correct steering",
		models.SeverityCritical:  "Severe lane departure detected - immediate correction required",
		models.SeverityEmergency: "Vehicle leaving roadway - emergency intervention required",
	},
	"CargoTamper": {
		models.SeverityInfo:      "Possible cargo movement detected",
		models.SeverityWarning:   "Cargo tampering detected - inspect cargo area",
		models.SeverityCritical:  "Cargo tampering confirmed - secure cargo immediately",
		models.SeverityEmergency: "Cargo theft in progress - notify authorities immediately",
	},
	"HarshBraking": {
		models.SeverityInfo:      "Moderate braking detected",
		models.SeverityWarning:   "Harsh braking detected - review driving behavior",
		models.SeverityCritical:  "Emergency braking detected - check for accidents",
		models.SeverityEmergency: "Collision detected - emergency response required",
	},
	"RapidAcceleration": {
		models.SeverityInfo:      "Aggressive acceleration detected",
		models.SeverityWarning:   "Rapid acceleration detected - review driving behavior",
		models.SeverityCritical:  "Dangerous acceleration detected - immediate intervention required",
		models.SeverityEmergency: "Loss of control detected - emergency stop required",
	},
	"OverSpeeding": {
		models.SeverityInfo:      "Speed limit slightly exceeded",
		models.SeverityWarning:   "Speed limit significantly exceeded - slow down",
		models.SeverityCritical:  "Dangerous speeding detected - immediate intervention required",
		models.SeverityEmergency: "Extreme speeding detected - emergency stop required",
	},
	"HighTemperature": {
		models.SeverityInfo:      "System temperature slightly elevated",
		models.SeverityWarning:   "System temperature high - monitor closely",
		models.SeverityCritical:  "System temperature critical - reduce load immediately",
		models.SeverityEmergency: "System overheating - emergency shutdown required",
	},
	"LowDiskSpace": {
		models.SeverityInfo:      "Disk space running low",
		models.SeverityWarning:   "Disk space critically low - clean up space",
		models.SeverityCritical:  "Disk space almost full - immediate cleanup required",
		models.SeverityEmergency: "Disk full - system may become unstable",
	},
	"HighCpuUsage": {
		models.SeverityInfo:      "CPU usage elevated",
		models.SeverityWarning:   "CPU usage high - monitor system performance",
		models.SeverityCritical:  "CPU usage critical - reduce load immediately",
		models.SeverityEmergency: "System unresponsive - emergency restart required",
	},
}

func alertMessage(alertType string, severity models.AlertSeverity) string {
	if m, ok := alertMessages[alertType]; ok {
		if msg, ok := m[severity]; ok {
			return msg
		}
	}
	return alertType + " alert (" + string(severity) + ")"
}

// generateAlerts produces 5-15 alerts per truck over the trailing week. The
// lifecycle timestamps follow the drawn status: acknowledged/resolved records
// get monotonically increasing acknowledged_at/resolved_at after triggered_at.
func (g *Seeder) generateAlerts(trucks []models.Truck) []models.Alert {
	var alerts []models.Alert
	for _, truck := range trucks {
		n := 5 + g.rng.IntN(11)
		for i := 0; i < n; i++ {
			alertType := g.pick(alertTypes)
			severity := alertSeverities[g.rng.IntN(len(alertSeverities))]
			status := alertStatuses[g.rng.IntN(len(alertStatuses))]
			triggeredAt := g.pastTime(7 * 24 * time.Hour)

			var acknowledgedAt, resolvedAt *time.Time
			if status == models.AlertAcknowledged || status == models.AlertResolved {
				t := triggeredAt.Add(time.Duration(g.rng.Float64() * float64(time.Hour)))
				acknowledgedAt = &t
			}
			if status == models.AlertResolved {
				t := acknowledgedAt.Add(time.Duration(g.rng.Float64() * float64(time.Hour)))
				resolvedAt = &t
			}

			updatedAt := triggeredAt
			if resolvedAt != nil {
				updatedAt = *resolvedAt
			} else if acknowledgedAt != nil {
				updatedAt = *acknowledgedAt
			}

			alerts = append(alerts, models.Alert{
				ID:             uuid.NewString(),
				AlertID:        "ALERT-" + uuid.NewString()[:8],
				TruckID:        truck.ID,
				AlertType:      alertType,
				Severity:       severity,
				Message:        alertMessage(alertType, severity),
				TriggeredAt:    triggeredAt,
				AcknowledgedAt: acknowledgedAt,
				ResolvedAt:     resolvedAt,
				Source:         "seed_generator",
				Context:        g.alertContext(alertType, truck),
				Actions:        g.alertActions(alertType, severity),
				Status:         status,
				CreatedAt:      triggeredAt,
				UpdatedAt:      updatedAt,
			})
		}
	}
	return alerts
}

// alertContext attaches the type-specific evidence the edge agent reported
// alongside the truck's identity.
func (g *Seeder) alertContext(alertType string, truck models.Truck) map[string]any {
	ctx := map[string]any{
		"truck_id":            truck.ID,
		"truck_license_plate": truck.LicensePlate,
		"truck_model":         truck.Model,
		"truck_make":          truck.Make,
		"location":            truck.Location,
	}
	switch alertType {
	case "DrowsyDriver":
		ctx["eye_closure_ratio"] = 0.3 + g.rng.Float64()*0.7
		ctx["time_of_day"] = g.pick([]string{"day", "night", "dusk"})
	case "LaneDeparture":
		ctx["deviation_pixels"] = 20 + g.rng.IntN(100)
		ctx["lane_confidence"] = 0.7 + g.rng.Float64()*0.3
		ctx["speed_kmh"] = 60 + g.rng.Float64()*60
	case "CargoTamper":
		ctx["motion_score"] = 0.5 + g.rng.Float64()*0.5
		ctx["object_count_change"] = g.rng.IntN(5) - 2
	case "HarshBraking":
		ctx["g_force"] = 0.5 + g.rng.Float64()*0.5
		ctx["speed_kmh"] = 50 + g.rng.Float64()*70
	case "RapidAcceleration":
		ctx["g_force"] = 0.4 + g.rng.Float64()*0.6
		ctx["speed_kmh"] = 30 + g.rng.Float64()*80
	case "OverSpeeding":
		ctx["speed_kmh"] = 90 + g.rng.Float64()*50
		ctx["speed_limit"] = 80
	case "HighTemperature":
		ctx["temperature_c"] = 70 + g.rng.Float64()*30
		ctx["cpu_percent"] = 80 + g.rng.Float64()*20
	case "LowDiskSpace":
		ctx["disk_percent"] = 85 + g.rng.Float64()*15
		ctx["disk_used_gb"] = 100 + g.rng.Float64()*50
		ctx["disk_total_gb"] = 150
	case "HighCpuUsage":
		ctx["cpu_percent"] = 85 + g.rng.Float64()*15
	}
	return ctx
}

// alertActions mirrors the actuator responses the agent wires to severe
// alerts: buzzer and LED on anything Critical+, plus type-specific steps.
func (g *Seeder) alertActions(alertType string, severity models.AlertSeverity) []models.AlertAction {
	actions := []models.AlertAction{}
	severe := severity == models.SeverityCritical || severity == models.SeverityEmergency
	if severe {
		actions = append(actions,
			models.AlertAction{
				ActionID:   "ACTION-" + uuid.NewString()[:8],
				ActionType: "TriggerBuzzer",
				Target:     "buzzer_1",
				Parameters: map[string]any{"duration_ms": 1000, "pattern": "pulse", "pulse_count": 5},
			},
			models.AlertAction{
				ActionID:   "ACTION-" + uuid.NewString()[:8],
				ActionType: "FlashLed",
				Target:     "led_red",
				Parameters: map[string]any{"duration_ms": 5000, "pattern": "blink", "blink_count": 10},
			},
		)
	}
	if alertType == "DrowsyDriver" && severity == models.SeverityEmergency {
		actions = append(actions, models.AlertAction{
			ActionID:   "ACTION-" + uuid.NewString()[:8],
			ActionType: "ShowOnDisplay",
			Target:     "display_1",
			Parameters: map[string]any{"message": "DROWSY DRIVER - PULL OVER IMMEDIATELY", "duration_ms": 10000},
		})
	}
	if alertType == "LaneDeparture" && severity == models.SeverityCritical {
		actions = append(actions, models.AlertAction{
			ActionID:   "ACTION-" + uuid.NewString()[:8],
			ActionType: "ShowOnDisplay",
			Target:     "display_1",
			Parameters: map[string]any{"message": "LANE DEPARTURE - CORRECT STEERING", "duration_ms": 5000},
		})
	}
	if alertType == "CargoTamper" && severity == models.SeverityCritical {
		actions = append(actions, models.AlertAction{
			ActionID:   "ACTION-" + uuid.NewString()[:8],
			ActionType: "ActivateRelay",
			Target:     "relay_1",
			Parameters: map[string]any{"activate": true, "duration_ms": 0},
		})
	}
	return actions
}
