package controller

import (
	"context"
	"net/url"

	"fleetops/internal/bus"
	"fleetops/internal/gateway"
	"fleetops/internal/models"
)

// Telemetry manages one truck's telemetry history view.
type Telemetry struct {
	*Collection[models.TelemetryRecord]
}

// NewTelemetry builds the telemetry controller over the given gateway.
func NewTelemetry(api *gateway.Client) *Telemetry {
	return &Telemetry{newCollection(api, "/telemetry", func(r models.TelemetryRecord) string { return r.ID })}
}

// FetchForTruck loads a page of the given truck's telemetry history.
func (c *Telemetry) FetchForTruck(ctx context.Context, truckID string, query url.Values) error {
	return c.fetchList(ctx, "/trucks/"+truckID+"/telemetry", query)
}

// Merge appends a live telemetry frame to already-fetched data.
func (c *Telemetry) Merge(data any) {
	rec, err := decodeEntity[models.TelemetryRecord](data)
	if err != nil || rec.ID == "" {
		return
	}
	c.updateItem(rec.ID, rec)
}

// BindBus subscribes the controller to telemetry push frames.
func (c *Telemetry) BindBus(b *bus.Bus) func() {
	return b.Subscribe(models.EventTelemetry, func(msg models.PushMessage) { c.Merge(msg.Data) })
}
