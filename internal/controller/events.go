package controller

import (
	"fleetops/internal/bus"
	"fleetops/internal/gateway"
	"fleetops/internal/models"
)

// MlEvents manages the ML inference event feed.
type MlEvents struct {
	*Collection[models.MlEvent]
}

// NewMlEvents builds the ML event controller over the given gateway.
func NewMlEvents(api *gateway.Client) *MlEvents {
	return &MlEvents{newCollection(api, "/ml-events", func(e models.MlEvent) string { return e.ID })}
}

// Merge applies a live inference frame, clamping confidence values into [0,1].
func (c *MlEvents) Merge(data any) {
	incoming, err := decodeEntity[models.MlEvent](data)
	if err != nil || incoming.ID == "" {
		return
	}
	incoming.Confidence = models.Clamp01(incoming.Confidence)
	incoming.CalibratedConfidence = models.Clamp01(incoming.CalibratedConfidence)
	c.updateItem(incoming.ID, incoming)
}

// BindBus subscribes the controller to ml_event push frames.
func (c *MlEvents) BindBus(b *bus.Bus) func() {
	return b.Subscribe(models.EventMlEvent, func(msg models.PushMessage) { c.Merge(msg.Data) })
}

// Health manages the health snapshot feed.
type Health struct {
	*Collection[models.HealthStatus]
}

// NewHealth builds the health controller over the given gateway.
func NewHealth(api *gateway.Client) *Health {
	return &Health{newCollection(api, "/health", func(h models.HealthStatus) string { return h.ID })}
}

// Merge applies a live health frame, clamping resource percentages.
func (c *Health) Merge(data any) {
	incoming, err := decodeEntity[models.HealthStatus](data)
	if err != nil || incoming.ID == "" {
		return
	}
	incoming.Resources.CPUPercent = models.ClampPercent(incoming.Resources.CPUPercent)
	incoming.Resources.MemoryPercent = models.ClampPercent(incoming.Resources.MemoryPercent)
	incoming.Resources.SwapPercent = models.ClampPercent(incoming.Resources.SwapPercent)
	incoming.Resources.DiskPercent = models.ClampPercent(incoming.Resources.DiskPercent)
	c.updateItem(incoming.ID, incoming)
}

// BindBus subscribes the controller to health_status push frames.
func (c *Health) BindBus(b *bus.Bus) func() {
	return b.Subscribe(models.EventHealthStatus, func(msg models.PushMessage) { c.Merge(msg.Data) })
}
