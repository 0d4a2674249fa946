package seed

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"fleetops/internal/models"
)

// Live generators produce single fresh records for the realtime push feed,
// drawing from the same pools as the batch seeding paths so live frames are
// indistinguishable from seeded history.

// LiveTelemetry returns one telemetry sample for the truck stamped now.
func (g *Seeder) LiveTelemetry(truck models.Truck) models.TelemetryRecord {
	return g.telemetrySample(truck, time.Now().UTC())
}

// LiveAlert returns a freshly triggered alert for the truck.
func (g *Seeder) LiveAlert(truck models.Truck) models.Alert {
	alertType := g.pick(alertTypes)
	severity := alertSeverities[g.rng.IntN(len(alertSeverities))]
	now := time.Now().UTC()
	return models.Alert{
		ID:          uuid.NewString(),
		AlertID:     "ALERT-" + uuid.NewString()[:8],
		TruckID:     truck.ID,
		AlertType:   alertType,
		Severity:    severity,
		Message:     alertMessage(alertType, severity),
		TriggeredAt: now,
		Source:      "live_feed",
		Context:     g.alertContext(alertType, truck),
		Actions:     g.alertActions(alertType, severity),
		Status:      models.AlertTriggered,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// LiveMlEvent returns one fresh inference event for the truck.
func (g *Seeder) LiveMlEvent(truck models.Truck) models.MlEvent {
	modelName := g.pick(mlModelNames)
	confidence := models.Clamp01(0.6 + g.rng.Float64()*0.4)
	now := time.Now().UTC()
	hardware := models.HardwareCPU
	if g.rng.IntN(2) == 1 {
		hardware = models.HardwareCUDA
	}
	return models.MlEvent{
		ID:                   uuid.NewString(),
		EventID:              "ML-" + uuid.NewString()[:8],
		TruckID:              truck.ID,
		ModelName:            modelName,
		ModelVersion:         "1.0.0",
		Timestamp:            now,
		Result:               g.mlResult(modelName),
		Confidence:           confidence,
		CalibratedConfidence: models.Clamp01(confidence * (0.9 + g.rng.Float64()*0.2)),
		LatencyMs:            30 + g.rng.Float64()*70,
		HardwareUsed:         hardware,
		Meta: map[string]any{
			"device_id": truck.TruckID,
			"truck_id":  truck.ID,
			"route_id":  fmt.Sprintf("ROUTE-%d", g.rng.IntN(100)),
			"camera_id": g.pick([]string{"driver_camera", "front_camera", "cargo_camera"}),
		},
		CreatedAt: now,
	}
}

// LiveHealth returns one fresh health report for the truck, with the status
// bucket derived from the drawn resource snapshot.
func (g *Seeder) LiveHealth(truck models.Truck) models.HealthStatus {
	now := time.Now().UTC()
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

	return models.HealthStatus{
		ID:           uuid.NewString(),
		TruckID:      truck.ID,
		Timestamp:    now,
		Status:       status,
		Resources:    resources,
		Tasks:        g.healthTasks(),
		Alerts:       g.healthAlerts(status, now),
		ActionsTaken: g.healthActions(status, now),
		Meta: map[string]any{
			"device_id": truck.TruckID,
			"version":   "1.0.0",
			"hostname":  "truck-" + truck.TruckID,
		},
		CreatedAt: now,
	}
}
