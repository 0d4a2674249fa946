package seed

import (
	"sync"
	"testing"
	"time"

	"fleetops/internal/models"
	"fleetops/internal/store"
)

func newSeededStore(t *testing.T, count int) *store.Store {
	t.Helper()
	s, err := store.Open(store.NewMemoryBackend())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := NewSeeder(s, nil).Seed(count); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func TestSeedReferentialIntegrity(t *testing.T) {
	s := newSeededStore(t, 5)

	trucks, err := store.List[models.Truck](s, store.KindTrucks)
	if err != nil {
		t.Fatalf("list trucks: %v", err)
	}
	if len(trucks) != 5 {
		t.Fatalf("expected 5 trucks, got %d", len(trucks))
	}
	ids := make(map[string]bool, len(trucks))
	for _, tr := range trucks {
		ids[tr.ID] = true
	}

	telemetry, err := store.List[models.TelemetryRecord](s, store.KindTelemetry)
	if err != nil {
		t.Fatalf("list telemetry: %v", err)
	}
	for _, rec := range telemetry {
		if !ids[rec.TruckID] {
			t.Fatalf("telemetry %s references unknown truck %s", rec.ID, rec.TruckID)
		}
	}

	alerts, err := store.List[models.Alert](s, store.KindAlerts)
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	for _, a := range alerts {
		if !ids[a.TruckID] {
			t.Fatalf("alert %s references unknown truck %s", a.ID, a.TruckID)
		}
	}

	events, err := store.List[models.MlEvent](s, store.KindMlEvents)
	if err != nil {
		t.Fatalf("list ml events: %v", err)
	}
	for _, e := range events {
		if !ids[e.TruckID] {
			t.Fatalf("ml event %s references unknown truck %s", e.ID, e.TruckID)
		}
	}

	health, err := store.List[models.HealthStatus](s, store.KindHealthStatus)
	if err != nil {
		t.Fatalf("list health: %v", err)
	}
	for _, h := range health {
		if !ids[h.TruckID] {
			t.Fatalf("health report %s references unknown truck %s", h.ID, h.TruckID)
		}
	}
}

func TestSeedTelemetryCadence(t *testing.T) {
	s := newSeededStore(t, 3)

	trucks, err := store.List[models.Truck](s, store.KindTrucks)
	if err != nil {
		t.Fatalf("list trucks: %v", err)
	}
	telemetry, err := store.List[models.TelemetryRecord](s, store.KindTelemetry)
	if err != nil {
		t.Fatalf("list telemetry: %v", err)
	}

	perTruck := make(map[string][]models.TelemetryRecord)
	for _, rec := range telemetry {
		perTruck[rec.TruckID] = append(perTruck[rec.TruckID], rec)
	}

	want := int(telemetryWindow / telemetryInterval)
	for _, tr := range trucks {
		recs := perTruck[tr.ID]
		if len(recs) != want {
			t.Fatalf("truck %s has %d telemetry samples, want %d", tr.TruckID, len(recs), want)
		}
		for i := 1; i < len(recs); i++ {
			gap := recs[i].Timestamp.Sub(recs[i-1].Timestamp)
			if gap != telemetryInterval {
				t.Fatalf("truck %s sample gap %v, want %v", tr.TruckID, gap, telemetryInterval)
			}
		}
	}
}

func TestSeedIsNoOpWhenAlreadySeeded(t *testing.T) {
	s := newSeededStore(t, 4)
	before := s.Count(store.KindTrucks)

	if err := NewSeeder(s, nil).Seed(20); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if got := s.Count(store.KindTrucks); got != before {
		t.Fatalf("reseed changed truck count from %d to %d", before, got)
	}
}

func TestSeedAfterResetRegenerates(t *testing.T) {
	s := newSeededStore(t, 4)
	if err := s.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	for _, k := range store.Kinds {
		if got := s.Count(k); got != 0 {
			t.Fatalf("%s has %d records after reset", k, got)
		}
	}

	if err := NewSeeder(s, nil).Seed(6); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if got := s.Count(store.KindTrucks); got != 6 {
		t.Fatalf("expected 6 trucks after reseed, got %d", got)
	}
	if !s.Seeded() {
		t.Fatal("store not marked seeded after reseed")
	}
}

func TestSeedAllCollectionsPopulated(t *testing.T) {
	s := newSeededStore(t, 5)
	for _, k := range store.Kinds {
		if s.Count(k) == 0 {
			t.Fatalf("collection %s is empty after seed", k)
		}
	}
}

func TestSeedAlertLifecycleTimestamps(t *testing.T) {
	s := newSeededStore(t, 5)
	alerts, err := store.List[models.Alert](s, store.KindAlerts)
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	for _, a := range alerts {
		switch a.Status {
		case models.AlertTriggered:
			if a.AcknowledgedAt != nil || a.ResolvedAt != nil {
				t.Fatalf("triggered alert %s carries lifecycle timestamps", a.ID)
			}
		case models.AlertAcknowledged:
			if a.AcknowledgedAt == nil {
				t.Fatalf("acknowledged alert %s missing acknowledged_at", a.ID)
			}
			if a.AcknowledgedAt.Before(a.TriggeredAt) {
				t.Fatalf("alert %s acknowledged before triggered", a.ID)
			}
		case models.AlertResolved:
			if a.AcknowledgedAt == nil || a.ResolvedAt == nil {
				t.Fatalf("resolved alert %s missing lifecycle timestamps", a.ID)
			}
			if a.ResolvedAt.Before(*a.AcknowledgedAt) {
				t.Fatalf("alert %s resolved before acknowledged", a.ID)
			}
		}
	}
}

func TestSeedHealthBucketMatchesResources(t *testing.T) {
	s := newSeededStore(t, 5)
	reports, err := store.List[models.HealthStatus](s, store.KindHealthStatus)
	if err != nil {
		t.Fatalf("list health: %v", err)
	}
	for _, h := range reports {
		if want := models.HealthStateFor(h.Resources); h.Status != want {
			t.Fatalf("health %s status %s disagrees with resources (want %s)", h.ID, h.Status, want)
		}
	}
}

func TestSeedOtaProgressMatchesStatus(t *testing.T) {
	s := newSeededStore(t, 5)
	updates, err := store.List[models.OtaUpdate](s, store.KindOtaUpdates)
	if err != nil {
		t.Fatalf("list updates: %v", err)
	}
	for _, u := range updates {
		if models.TerminalOta(u.Status) {
			if u.ProgressPercent != 100 {
				t.Fatalf("terminal update %s has progress %.1f", u.ID, u.ProgressPercent)
			}
			if u.CompletedAt == nil {
				t.Fatalf("terminal update %s missing completed_at", u.ID)
			}
		}
		if u.Status == models.OtaPending && u.StartedAt != nil {
			t.Fatalf("pending update %s carries started_at", u.ID)
		}
		if u.ProgressPercent < 0 || u.ProgressPercent > 100 {
			t.Fatalf("update %s progress %.1f out of range", u.ID, u.ProgressPercent)
		}
	}
}

func TestSeedCommandResultsMatchStatus(t *testing.T) {
	s := newSeededStore(t, 5)
	commands, err := store.List[models.RemoteCommand](s, store.KindRemoteCommands)
	if err != nil {
		t.Fatalf("list commands: %v", err)
	}
	for _, c := range commands {
		if models.TerminalCommand(c.Status) && c.CompletedAt == nil {
			t.Fatalf("terminal command %s missing completed_at", c.ID)
		}
		if c.Status == models.CmdSuccess && c.Result == nil {
			t.Fatalf("successful command %s missing result", c.ID)
		}
		if c.Status == models.CmdFailed && c.Error == nil {
			t.Fatalf("failed command %s missing error", c.ID)
		}
		if c.CompletedAt != nil && c.CompletedAt.Before(c.IssuedAt) {
			t.Fatalf("command %s completed before issued", c.ID)
		}
	}
}

func TestGenerateTelemetryForTruckJittersAroundLocation(t *testing.T) {
	s, err := store.Open(store.NewMemoryBackend())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	g := NewSeeder(s, nil)
	truck := g.generateTrucks(1)[0]

	recs := g.GenerateTelemetryForTruck(truck)
	if len(recs) != int(telemetryWindow/telemetryInterval) {
		t.Fatalf("got %d samples", len(recs))
	}
	for _, rec := range recs {
		dLng := rec.Location[0] - truck.Location[0]
		dLat := rec.Location[1] - truck.Location[1]
		if dLng > 0.001 || dLng < -0.001 || dLat > 0.001 || dLat < -0.001 {
			t.Fatalf("sample %s strayed from truck position: %v vs %v", rec.ID, rec.Location, truck.Location)
		}
		if rec.Timestamp.After(time.Now().UTC()) {
			t.Fatalf("sample %s timestamped in the future", rec.ID)
		}
	}
}

func TestConcurrentGenerationIsSafe(t *testing.T) {
	s, err := store.Open(store.NewMemoryBackend())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	g := NewSeeder(s, nil)
	truck := g.generateTrucks(1)[0]

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				g.LiveTelemetry(truck)
				g.LiveAlert(truck)
				g.LiveMlEvent(truck)
				g.LiveHealth(truck)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				g.GenerateTelemetryForTruck(truck)
			}
		}()
	}
	wg.Wait()
}

func TestTelemetryWindowTrailsCallTime(t *testing.T) {
	s, err := store.Open(store.NewMemoryBackend())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	g := NewSeeder(s, nil)
	truck := g.generateTrucks(1)[0]

	before := time.Now().UTC()
	recs := g.GenerateTelemetryForTruck(truck)
	after := time.Now().UTC()

	last := recs[len(recs)-1].Timestamp
	if last.Before(before.Add(-time.Second)) || last.After(after) {
		t.Fatalf("newest sample at %v, want within the call window [%v, %v]", last, before, after)
	}
	first := recs[0].Timestamp
	if got := last.Sub(first); got != telemetryWindow-telemetryInterval {
		t.Fatalf("window spans %v, want %v", got, telemetryWindow-telemetryInterval)
	}
}
