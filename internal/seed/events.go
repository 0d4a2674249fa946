package seed

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"fleetops/internal/models"
)

var mlModelNames = []string{"drowsiness", "lane_departure", "cargo_tamper", "license_plate", "weather"}

// generateMlEvents produces 10-30 inference events per truck over the
// trailing week. Confidence stays inside [0,1] by construction and is
// clamped anyway at the model boundary.
func (g *Seeder) generateMlEvents(trucks []models.Truck) []models.MlEvent {
	var events []models.MlEvent
	for _, truck := range trucks {
		n := 10 + g.rng.IntN(21)
		for i := 0; i < n; i++ {
			modelName := g.pick(mlModelNames)
			confidence := models.Clamp01(0.6 + g.rng.Float64()*0.4)
			ts := g.pastTime(7 * 24 * time.Hour)
			hardware := models.HardwareCPU
			if g.rng.IntN(2) == 1 {
				hardware = models.HardwareCUDA
			}
			events = append(events, models.MlEvent{
				ID:                   uuid.NewString(),
				EventID:              "ML-" + uuid.NewString()[:8],
				TruckID:              truck.ID,
				ModelName:            modelName,
				ModelVersion:         "1.0.0",
				Timestamp:            ts,
				Result:               g.mlResult(modelName),
				Confidence:           confidence,
				CalibratedConfidence: models.Clamp01(confidence * (0.9 + g.rng.Float64()*0.2)),
				LatencyMs:            30 + g.rng.Float64()*70,
				HardwareUsed:         hardware,
				Meta: map[string]any{
					"device_id":         truck.TruckID,
					"truck_id":          truck.ID,
					"route_id":          fmt.Sprintf("ROUTE-%d", g.rng.IntN(100)),
					"camera_id":         g.pick([]string{"driver_camera", "front_camera", "cargo_camera"}),
					"cpu_usage_percent": 30 + g.rng.Float64()*50,
					"gpu_usage_percent": 20 + g.rng.Float64()*60,
					"temperature_c":     40 + g.rng.Float64()*30,
				},
				CreatedAt: ts,
			})
		}
	}
	return events
}

func (g *Seeder) mlResult(modelName string) models.MlResult {
	boolp := func(b bool) *bool { return &b }
	floatp := func(f float64) *float64 { return &f }
	intp := func(i int) *int { return &i }
	strp := func(s string) *string { return &s }

	switch modelName {
	case "drowsiness":
		return models.MlResult{
			IsDrowsy:        boolp(g.rng.IntN(2) == 1),
			EyeClosureRatio: floatp(0.2 + g.rng.Float64()*0.8),
		}
	case "lane_departure":
		return models.MlResult{
			IsDeparting:     boolp(g.rng.IntN(2) == 1),
			DeviationPixels: intp(10 + g.rng.IntN(100)),
		}
	case "cargo_tamper":
		return models.MlResult{
			IsTampered:  boolp(g.rng.IntN(2) == 1),
			MotionScore: floatp(0.3 + g.rng.Float64()*0.7),
		}
	case "license_plate":
		return models.MlResult{
			PlateText: strp(fmt.Sprintf("TRK%d", g.rng.IntN(10000))),
			BoundingBox: []float64{
				0.1 + g.rng.Float64()*0.3,
				0.1 + g.rng.Float64()*0.3,
				0.2 + g.rng.Float64()*0.2,
				0.1 + g.rng.Float64()*0.1,
			},
		}
	case "weather":
		return models.MlResult{
			WeatherType: strp(g.pick([]string{"Clear", "Rain", "Fog", "Snow", "Night"})),
			VisibilityM: floatp(100 + g.rng.Float64()*900),
		}
	}
	return models.MlResult{}
}

var healthTaskNames = []string{"sensor_engine", "camera_engine", "ml_engine", "health_engine", "ota_engine"}

// generateHealth produces 5-15 health reports per truck. The status bucket is
// derived from the drawn resource snapshot via models.HealthStateFor, so the
// record's bucket always agrees with its numbers.
func (g *Seeder) generateHealth(trucks []models.Truck) []models.HealthStatus {
	var reports []models.HealthStatus
	for _, truck := range trucks {
		n := 5 + g.rng.IntN(11)
		for i := 0; i < n; i++ {
			ts := g.pastTime(7 * 24 * time.Hour)
			resources := models.ResourceUsage{
				CPUPercent:        models.ClampPercent(30 + g.rng.Float64()*60),
				CPUCores:          4,
				MemoryPercent:     models.ClampPercent(40 + g.rng.Float64()*50),
				MemoryUsedMB:      2048 + g.rng.IntN(2048),
				MemoryTotalMB:     4096,
				MemoryAvailableMB: 1024 + g.rng.IntN(3072),
				SwapPercent:       models.ClampPercent(10 + g.rng.Float64()*40),
				DiskPercent:       models.ClampPercent(50 + g.rng.Float64()*40),
				DiskUsedGB:        50 + g.rng.IntN(100),
				DiskTotalGB:       200,
				DiskAvailableGB:   50 + g.rng.IntN(150),
				TemperatureC:      40 + g.rng.Float64()*40,
				UptimeSec:         3600 + g.rng.Int64N(86400),
				LoadAverage: [3]float64{
					1 + g.rng.Float64()*3,
					0.8 + g.rng.Float64()*2.5,
					0.6 + g.rng.Float64()*2,
				},
			}
			resources.ThermalThrottling = resources.TemperatureC > 80
			status := models.HealthStateFor(resources)

			reports = append(reports, models.HealthStatus{
				ID:           uuid.NewString(),
				TruckID:      truck.ID,
				Timestamp:    ts,
				Status:       status,
				Resources:    resources,
				Tasks:        g.healthTasks(),
				Alerts:       g.healthAlerts(status, ts),
				ActionsTaken: g.healthActions(status, ts),
				Meta: map[string]any{
					"device_id":      truck.TruckID,
					"version":        "1.0.0",
					"hostname":       "truck-" + truck.TruckID,
					"hardware_model": "Raspberry Pi 4",
					"location":       truck.Location,
				},
				CreatedAt: ts,
			})
		}
	}
	return reports
}

func (g *Seeder) healthTasks() []models.TaskHealth {
	statuses := []string{"Running", "Degraded", "Failed", "Restarting"}
	tasks := make([]models.TaskHealth, 0, len(healthTaskNames))
	for _, name := range healthTaskNames {
		status := g.pick(statuses)
		var lastRestart *time.Time
		if g.rng.Float64() > 0.8 {
			t := g.pastTime(time.Hour)
			lastRestart = &t
		}
		tasks = append(tasks, models.TaskHealth{
			Name:            name,
			IsAlive:         status == "Running",
			LastSeenMs:      g.rng.Int64N(60000),
			CPUUsagePercent: 10 + g.rng.Float64()*40,
			MemoryUsageMB:   100 + g.rng.IntN(400),
			Restarts:        g.rng.IntN(5),
			LastRestart:     lastRestart,
		})
	}
	return tasks
}

// healthAlerts raises monitor alerts only when the derived bucket warrants
// them, with severity matching the bucket.
func (g *Seeder) healthAlerts(status models.HealthState, ts time.Time) []models.HealthAlert {
	alerts := []models.HealthAlert{}
	if status != models.HealthWarning && status != models.HealthCritical {
		return alerts
	}
	severity := models.SeverityWarning
	suffix := "high"
	if status == models.HealthCritical {
		severity = models.SeverityCritical
		suffix = "critical"
	}
	kinds := []struct{ alertType, subject, action string }{
		{"high_cpu_usage", "CPU usage", "Reduce load or restart service"},
		{"high_memory_usage", "Memory usage", "Clear cache or restart service"},
		{"high_temperature", "System temperature", "Reduce load or check cooling"},
	}
	for _, k := range kinds {
		if g.rng.Float64() > 0.5 {
			alerts = append(alerts, models.HealthAlert{
				AlertID:           "HEALTH-" + uuid.NewString()[:8],
				AlertType:         k.alertType,
				Severity:          severity,
				Message:           k.subject + " " + suffix,
				TriggeredAt:       ts,
				Source:            "health_monitor",
				RecommendedAction: k.action,
			})
		}
	}
	return alerts
}

func (g *Seeder) healthActions(status models.HealthState, ts time.Time) []models.RemediationAction {
	actions := []models.RemediationAction{}
	if status != models.HealthWarning && status != models.HealthCritical {
		return actions
	}
	if g.rng.Float64() > 0.5 {
		actions = append(actions, models.RemediationAction{
			ActionID:     "ACTION-" + uuid.NewString()[:8],
			ActionType:   "ThrottleCameraFps",
			TargetModule: "camera",
			Parameters:   map[string]any{"reduction_percent": 50},
			ExecutedAt:   ts,
			Success:      true,
			Message:      "Reduced camera FPS to reduce load",
		})
	}
	if g.rng.Float64() > 0.5 {
		actions = append(actions, models.RemediationAction{
			ActionID:     "ACTION-" + uuid.NewString()[:8],
			ActionType:   "DisableMlModel",
			TargetModule: "ml_edge",
			Parameters:   map[string]any{"model": "license_plate"},
			ExecutedAt:   ts,
			Success:      true,
			Message:      "Disabled license plate model to reduce load",
		})
	}
	if status == models.HealthCritical && g.rng.Float64() > 0.5 {
		actions = append(actions, models.RemediationAction{
			ActionID:     "ACTION-" + uuid.NewString()[:8],
			ActionType:   "RebootSystem",
			TargetModule: "system",
			Parameters:   map[string]any{"reason": "critical_health"},
			ExecutedAt:   ts,
			Success:      false,
			Message:      "Scheduled system reboot due to critical health",
		})
	}
	return actions
}
