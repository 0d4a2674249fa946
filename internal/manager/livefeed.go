package manager

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"fleetops/internal/middleware"
	"fleetops/internal/models"
	"fleetops/internal/seed"
	"fleetops/internal/store"
	"fleetops/internal/utils"
)

const defaultFeedInterval = 10 * time.Second

// LiveFeed periodically generates a fresh record for a random truck, commits
// it to the store, and pushes it to connected websocket clients. Pushed frames
// land in the store first so a client reloading the page sees the same record
// it just received on the channel.
type LiveFeed struct {
	store    *store.Store
	hub      *middleware.Hub
	seeder   *seed.Seeder
	log      *utils.Logger
	interval time.Duration
	rng      *rand.Rand

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewLiveFeed builds a feed over the given store and hub. A zero interval
// selects the default cadence; a nil logger is allowed.
func NewLiveFeed(s *store.Store, hub *middleware.Hub, seeder *seed.Seeder, log *utils.Logger, interval time.Duration) *LiveFeed {
	if interval <= 0 {
		interval = defaultFeedInterval
	}
	return &LiveFeed{
		store:    s,
		hub:      hub,
		seeder:   seeder,
		log:      log,
		interval: interval,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Start launches the feed loop. Starting twice is a no-op.
func (f *LiveFeed) Start() {
	f.mu.Lock()
	if f.stop != nil {
		f.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	f.stop = stop
	f.mu.Unlock()

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				f.emit()
			case <-stop:
				return
			}
		}
	}()
}

// Stop halts the feed loop and waits for shutdown.
func (f *LiveFeed) Stop() {
	f.mu.Lock()
	stop := f.stop
	f.stop = nil
	f.mu.Unlock()
	if stop != nil {
		close(stop)
	}
	f.wg.Wait()
}

// emit generates one frame for a random truck. Telemetry dominates the mix;
// alerts, ML events, and health reports arrive less often, roughly matching
// the cadence of the seeded history.
func (f *LiveFeed) emit() {
	trucks, err := store.List[models.Truck](f.store, store.KindTrucks)
	if err != nil || len(trucks) == 0 {
		return
	}
	truck := trucks[f.rng.IntN(len(trucks))]

	switch roll := f.rng.IntN(10); {
	case roll < 6:
		rec := f.seeder.LiveTelemetry(truck)
		f.commit(store.KindTelemetry, rec.ID, rec, models.EventTelemetry)
	case roll < 8:
		ev := f.seeder.LiveMlEvent(truck)
		f.commit(store.KindMlEvents, ev.ID, ev, models.EventMlEvent)
	case roll < 9:
		alert := f.seeder.LiveAlert(truck)
		f.commit(store.KindAlerts, alert.ID, alert, models.EventAlert)
	default:
		report := f.seeder.LiveHealth(truck)
		f.commit(store.KindHealthStatus, report.ID, report, models.EventHealthStatus)
	}
}

func (f *LiveFeed) commit(k store.Kind, id string, record any, event models.EventType) {
	doc, err := store.ToDoc(record)
	if err != nil {
		f.logf("Live feed: encode %s record: %v", k, err)
		return
	}
	if _, err := f.store.Upsert(k, id, doc); err != nil {
		f.logf("Live feed: commit %s record: %v", k, err)
		return
	}
	if f.hub != nil {
		f.hub.PushEvent(event, record)
	}
}

func (f *LiveFeed) logf(format string, args ...any) {
	if f.log != nil {
		f.log.Write(fmt.Sprintf(format, args...))
	}
}
