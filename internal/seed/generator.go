// Package seed synthesizes an internally consistent fleet for a fresh
// session: trucks first, then dependent telemetry, alerts, ML events, and
// health records per truck, plus fleet-wide OTA updates and remote commands.
// Record shapes and cadences are fixed; values are drawn at random. Every
// derived field (status buckets, lifecycle timestamps) is computed from the
// same draw that produced its primary metric, so a record never displays a
// status contradicting its own numbers.
package seed

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleetops/internal/models"
	"fleetops/internal/store"
	"fleetops/internal/utils"
)

const (
	// Telemetry cadence: one sample every 30 minutes across a trailing
	// 24 hour window.
	telemetryInterval = 30 * time.Minute
	telemetryWindow   = 24 * time.Hour
)

var (
	truckMakes    = []string{"Volvo", "Scania", "Mercedes", "MAN", "DAF"}
	truckModels   = []string{"FH16", "R-series", "Actros", "TGX", "XF"}
	truckYears    = []string{"2020", "2021", "2022", "2023"}
	truckStatuses = []models.TruckStatus{models.TruckOnline, models.TruckOffline, models.TruckMaintenance}
)

// Fleet depots cluster around a base position so the map view opens on a
// sensible viewport.
const (
	baseLat = 37.7749
	baseLng = -122.4194
)

// Seeder generates and commits the synthetic fleet. One instance is shared
// between the HTTP handlers and the live feed goroutine, so every draw goes
// through the locked rng.
type Seeder struct {
	store *store.Store
	log   *utils.Logger
	rng   *lockedRand
}

// lockedRand serializes draws; math/rand/v2's *Rand is not goroutine-safe.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRand) Int64N(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Int64N(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// NewSeeder builds a seeder over the given store. A nil logger is allowed.
func NewSeeder(s *store.Store, log *utils.Logger) *Seeder {
	return &Seeder{
		store: s,
		log:   log,
		rng:   &lockedRand{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))},
	}
}

func (g *Seeder) logf(format string, args ...any) {
	if g.log != nil {
		g.log.Write(fmt.Sprintf(format, args...))
	}
}

// Seed populates all collections with count trucks and their dependent
// records. A second call against an already-seeded store is a no-op; after
// an explicit store Reset the next call regenerates fully. Generation is
// staged in memory and committed collection by collection only once every
// record has been produced, so a failed draw never leaves a partial fleet.
func (g *Seeder) Seed(count int) error {
	if g.store.Seeded() {
		return nil
	}
	if count <= 0 {
		count = 10
	}
	g.logf("Seeding synthetic fleet: %d trucks", count)

	trucks := g.generateTrucks(count)
	telemetry := g.generateTelemetry(trucks)
	alerts := g.generateAlerts(trucks)
	mlEvents := g.generateMlEvents(trucks)
	health := g.generateHealth(trucks)
	updates := g.generateOtaUpdates(trucks)
	commands := g.generateCommands(trucks)

	if err := store.PutList(g.store, store.KindTrucks, trucks); err != nil {
		return fmt.Errorf("commit trucks: %w", err)
	}
	if err := store.PutList(g.store, store.KindTelemetry, telemetry); err != nil {
		return fmt.Errorf("commit telemetry: %w", err)
	}
	if err := store.PutList(g.store, store.KindAlerts, alerts); err != nil {
		return fmt.Errorf("commit alerts: %w", err)
	}
	if err := store.PutList(g.store, store.KindMlEvents, mlEvents); err != nil {
		return fmt.Errorf("commit ml events: %w", err)
	}
	if err := store.PutList(g.store, store.KindHealthStatus, health); err != nil {
		return fmt.Errorf("commit health: %w", err)
	}
	if err := store.PutList(g.store, store.KindOtaUpdates, updates); err != nil {
		return fmt.Errorf("commit ota updates: %w", err)
	}
	if err := store.PutList(g.store, store.KindRemoteCommands, commands); err != nil {
		return fmt.Errorf("commit commands: %w", err)
	}
	if err := g.store.SetSeeded(true); err != nil {
		return fmt.Errorf("mark seeded: %w", err)
	}
	g.logf("Seed complete: %d trucks, %d telemetry, %d alerts, %d ml events, %d health, %d updates, %d commands",
		len(trucks), len(telemetry), len(alerts), len(mlEvents), len(health), len(updates), len(commands))
	return nil
}

func (g *Seeder) pick(options []string) string {
	return options[g.rng.IntN(len(options))]
}

// pastTime returns a uniformly random instant within the given trailing window.
func (g *Seeder) pastTime(window time.Duration) time.Time {
	return time.Now().UTC().Add(-time.Duration(g.rng.Float64() * float64(window)))
}

func (g *Seeder) generateTrucks(count int) []models.Truck {
	now := time.Now().UTC()
	trucks := make([]models.Truck, 0, count)
	for i := 1; i <= count; i++ {
		var fleetID, driverID *string
		if i%3 == 0 {
			id := uuid.NewString()
			fleetID = &id
		}
		if i%2 == 0 {
			id := uuid.NewString()
			driverID = &id
		}
		loc := models.Location{
			baseLng + (g.rng.Float64()-0.5)*0.1,
			baseLat + (g.rng.Float64()-0.5)*0.1,
		}
		trucks = append(trucks, models.Truck{
			ID:           uuid.NewString(),
			TruckID:      fmt.Sprintf("TRK-%04d", i),
			Model:        g.pick(truckModels),
			Make:         g.pick(truckMakes),
			Year:         g.pick(truckYears),
			LicensePlate: fmt.Sprintf("TRK%03dA", i),
			VIN:          "VIN" + uuid.NewString()[:17],
			FleetID:      fleetID,
			DriverID:     driverID,
			Status:       truckStatuses[g.rng.IntN(len(truckStatuses))],
			LastSeen:     g.pastTime(time.Hour),
			Location:     loc,
			CreatedAt:    g.pastTime(30 * 24 * time.Hour),
			UpdatedAt:    now,
		})
	}
	return trucks
}

// GenerateTelemetryForTruck produces the standard 24h window of samples for a
// single truck, used both at seed time and when a truck is created later. The
// window trails the moment of the call, so trucks registered after a long
// uptime still get a current history.
func (g *Seeder) GenerateTelemetryForTruck(truck models.Truck) []models.TelemetryRecord {
	now := time.Now().UTC()
	points := int(telemetryWindow / telemetryInterval)
	records := make([]models.TelemetryRecord, 0, points)
	for i := 0; i < points; i++ {
		ts := now.Add(-time.Duration(points-1-i) * telemetryInterval)
		rec := g.telemetrySample(truck, ts)
		// Camera frames are sparse: only some samples carry them.
		if i%10 == 0 {
			rec.Cameras.FrontCamera = g.cameraFrame(ts, 1280, 720)
		}
		if i%5 == 0 {
			rec.Cameras.DriverCamera = g.cameraFrame(ts, 640, 480)
		}
		if i%7 == 0 {
			rec.Cameras.CargoCamera = g.cameraFrame(ts, 800, 600)
		}
		records = append(records, rec)
	}
	return records
}

// telemetrySample draws one sensor bundle for the truck at the given instant.
func (g *Seeder) telemetrySample(truck models.Truck, ts time.Time) models.TelemetryRecord {
	speed := g.rng.Float64() * 100
	heading := g.rng.Float64() * 360
	jitter := func() float64 { return (g.rng.Float64() - 0.5) * 0.001 }
	loc := models.Location{truck.Location[0] + jitter(), truck.Location[1] + jitter()}

	return models.TelemetryRecord{
		ID:        uuid.NewString(),
		TruckID:   truck.ID,
		Timestamp: ts,
		Location:  loc,
		SpeedKmh:  speed,
		Heading:   heading,
		Sensors: models.SensorBundle{
			GPS: models.GpsReading{
				Latitude:   loc[1],
				Longitude:  loc[0],
				Altitude:   100 + g.rng.Float64()*50,
				SpeedKmh:   speed,
				Heading:    heading,
				Satellites: 8 + g.rng.IntN(4),
				FixQuality: 1,
			},
			OBD: models.ObdReading{
				RPM:         1000 + g.rng.IntN(3000),
				SpeedKmh:    int(speed),
				CoolantTemp: 70 + g.rng.IntN(20),
				FuelLevel:   50 + g.rng.IntN(50),
				EngineLoad:  30 + g.rng.IntN(70),
				ThrottlePos: 20 + g.rng.IntN(80),
			},
			IMU: models.ImuReading{
				AccelX: (g.rng.Float64() - 0.5) * 2,
				AccelY: (g.rng.Float64() - 0.5) * 2,
				AccelZ: 0.98 + (g.rng.Float64()-0.5)*0.1,
				GyroX:  (g.rng.Float64() - 0.5) * 10,
				GyroY:  (g.rng.Float64() - 0.5) * 10,
				GyroZ:  (g.rng.Float64() - 0.5) * 10,
			},
			TPMS: models.TpmsReading{
				FrontLeft:  g.tire(),
				FrontRight: g.tire(),
				RearLeft:   g.tire(),
				RearRight:  g.tire(),
			},
		},
		Cameras: models.CameraFrames{},
		Scenario: g.pick([]string{
			"normal_driving", "emergency_braking", "rapid_acceleration", "sharp_turn",
		}),
		CreatedAt: ts,
	}
}

func (g *Seeder) generateTelemetry(trucks []models.Truck) []models.TelemetryRecord {
	var all []models.TelemetryRecord
	for _, truck := range trucks {
		all = append(all, g.GenerateTelemetryForTruck(truck)...)
	}
	return all
}

func (g *Seeder) tire() models.TireReading {
	return models.TireReading{
		PressurePsi:    32 + (g.rng.Float64()-0.5)*4,
		TemperatureC:   25 + g.rng.Float64()*20,
		BatteryPercent: 80 + g.rng.IntN(20),
		Alert:          g.rng.Float64() > 0.95,
	}
}

func (g *Seeder) cameraFrame(ts time.Time, w, h int) *models.CameraFrame {
	return &models.CameraFrame{
		FrameID:      uuid.NewString(),
		Timestamp:    ts,
		URL:          fmt.Sprintf("https://media.fleetops.local/frames/%dx%d/%d.jpg", w, h, g.rng.IntN(1000)),
		ThumbnailURL: fmt.Sprintf("https://media.fleetops.local/thumbs/%dx%d/%d.jpg", w/4, h/4, g.rng.IntN(1000)),
		Width:        w,
		Height:       h,
		Format:       "jpeg",
		SizeBytes:    int64(w*h) / 2,
		IsKeyframe:   true,
	}
}
