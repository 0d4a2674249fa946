package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleetops/internal/middleware"
	"fleetops/internal/models"
	"fleetops/internal/store"
)

// Fresh trucks spawn near the main depot until their agent reports a fix.
var depotLocation = models.Location{-122.4194, 37.7749}

func (a *API) ListTrucks(c *gin.Context) {
	a.list(c, store.KindTrucks, truckFilters)
}

func (a *API) GetTruck(c *gin.Context) {
	a.find(c, store.KindTrucks, c.Param("id"))
}

// ListTruckTelemetry serves the per-truck telemetry page. The path id pins the
// truck_id condition; the rest of the telemetry filter vocabulary still
// applies.
func (a *API) ListTruckTelemetry(c *gin.Context) {
	id := c.Param("id")
	if _, err := a.store.Find(store.KindTrucks, id); err != nil {
		fail(c, http.StatusNotFound, "truck not found: "+id)
		return
	}
	c.Request.URL.RawQuery = "truck_id=" + id + "&" + c.Request.URL.RawQuery
	a.list(c, store.KindTelemetry, telemetryFilters)
}

// CreateTruck registers a truck and backfills its trailing telemetry window so
// the detail page has charts immediately.
func (a *API) CreateTruck(c *gin.Context) {
	var req models.CreateTruckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid truck payload: "+err.Error())
		return
	}
	if err := middleware.ValidatePayload(req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	truck := models.Truck{
		ID:           uuid.NewString(),
		TruckID:      fmt.Sprintf("TRK-%04d", a.store.Count(store.KindTrucks)+1),
		Model:        middleware.SanitizeString(req.Model),
		Make:         middleware.SanitizeString(req.Make),
		Year:         middleware.SanitizeString(req.Year),
		LicensePlate: middleware.SanitizeString(req.LicensePlate),
		VIN:          middleware.SanitizeString(req.VIN),
		FleetID:      req.FleetID,
		Status:       models.TruckOnline,
		LastSeen:     now,
		Location:     depotLocation,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	doc, err := store.ToDoc(truck)
	if err != nil {
		failErr(c, err)
		return
	}
	if _, err := a.store.Upsert(store.KindTrucks, truck.ID, doc); err != nil {
		failErr(c, err)
		return
	}

	if a.seeder != nil {
		history := a.seeder.GenerateTelemetryForTruck(truck)
		existing, err := store.List[models.TelemetryRecord](a.store, store.KindTelemetry)
		if err == nil {
			if err := store.PutList(a.store, store.KindTelemetry, append(existing, history...)); err != nil {
				a.logf("Backfill telemetry for %s: %v", truck.TruckID, err)
			}
		}
	}

	created(c, truck)
}

func (a *API) UpdateTruck(c *gin.Context) {
	id := c.Param("id")
	var req models.UpdateTruckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid truck payload: "+err.Error())
		return
	}
	if req.Status != nil && !models.ValidTruckStatus(*req.Status) {
		fail(c, http.StatusBadRequest, "unknown truck status: "+string(*req.Status))
		return
	}

	truck, err := store.FindAs[models.Truck](a.store, store.KindTrucks, id)
	if err != nil {
		fail(c, http.StatusNotFound, "truck not found: "+id)
		return
	}

	if req.Model != nil {
		truck.Model = middleware.SanitizeString(*req.Model)
	}
	if req.Make != nil {
		truck.Make = middleware.SanitizeString(*req.Make)
	}
	if req.Year != nil {
		truck.Year = middleware.SanitizeString(*req.Year)
	}
	if req.LicensePlate != nil {
		truck.LicensePlate = middleware.SanitizeString(*req.LicensePlate)
	}
	if req.VIN != nil {
		truck.VIN = middleware.SanitizeString(*req.VIN)
	}
	if req.FleetID != nil {
		truck.FleetID = req.FleetID
	}
	if req.DriverID != nil {
		truck.DriverID = req.DriverID
	}
	if req.Status != nil {
		truck.Status = *req.Status
	}
	truck.UpdatedAt = time.Now().UTC()

	doc, err := store.ToDoc(truck)
	if err != nil {
		failErr(c, err)
		return
	}
	updated, err := a.store.Upsert(store.KindTrucks, id, doc)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, updated)
}

// DeleteTruck removes the truck and cascades over its dependent records, so no
// collection is left holding a dangling truck reference.
func (a *API) DeleteTruck(c *gin.Context) {
	id := c.Param("id")
	if err := a.store.Remove(store.KindTrucks, id); err != nil {
		fail(c, http.StatusNotFound, "truck not found: "+id)
		return
	}
	for _, kind := range []store.Kind{
		store.KindTelemetry,
		store.KindAlerts,
		store.KindMlEvents,
		store.KindHealthStatus,
		store.KindOtaUpdates,
		store.KindRemoteCommands,
	} {
		if n, err := a.store.RemoveWhere(kind, "truck_id", id); err != nil {
			a.logf("Cascade delete %s for truck %s: %v", kind, id, err)
		} else if n > 0 {
			a.logf("Cascade deleted %d %s records for truck %s", n, kind, id)
		}
	}
	ok(c, gin.H{"deleted": id})
}

func (a *API) logf(format string, args ...any) {
	if a.log != nil {
		a.log.Write(fmt.Sprintf(format, args...))
	}
}
