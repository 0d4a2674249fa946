package controller

import (
	"context"
	"time"

	"fleetops/internal/apierr"
	"fleetops/internal/bus"
	"fleetops/internal/gateway"
	"fleetops/internal/models"
)

// Alerts manages the alert feed, including the acknowledge/resolve lifecycle.
type Alerts struct {
	*Collection[models.Alert]
}

// NewAlerts builds the alert controller over the given gateway.
func NewAlerts(api *gateway.Client) *Alerts {
	return &Alerts{newCollection(api, "/alerts", func(a models.Alert) string { return a.ID })}
}

// Acknowledge moves an alert to Acknowledged, optimistically.
func (c *Alerts) Acknowledge(ctx context.Context, id string) error {
	return c.transition(ctx, id, models.AlertAcknowledged)
}

// Resolve moves an alert to Resolved, optimistically.
func (c *Alerts) Resolve(ctx context.Context, id string) error {
	return c.transition(ctx, id, models.AlertResolved)
}

// transition applies the new status to local state immediately, then confirms
// against the backend; on failure the pre-mutation record is restored.
func (c *Alerts) transition(ctx context.Context, id string, next models.AlertStatus) error {
	prior, known := c.item(id)
	if known && !models.CanTransitionAlert(prior.Status, next) {
		err := apierr.New(apierr.ValidationFailure, "alert cannot move from %s to %s", prior.Status, next)
		c.surface(err)
		return err
	}

	if known {
		now := time.Now().UTC()
		if now.Before(prior.TriggeredAt) {
			now = prior.TriggeredAt
		}
		optimistic := prior
		optimistic.Status = next
		optimistic.UpdatedAt = now
		switch next {
		case models.AlertAcknowledged:
			if optimistic.AcknowledgedAt == nil {
				optimistic.AcknowledgedAt = &now
			}
		case models.AlertResolved:
			if optimistic.AcknowledgedAt == nil {
				optimistic.AcknowledgedAt = &now
			}
			if optimistic.ResolvedAt == nil {
				optimistic.ResolvedAt = &now
			}
		}
		c.updateItem(id, optimistic)
	}

	var confirmed models.Alert
	if err := c.api.Put(ctx, c.path+"/"+id, models.UpdateAlertRequest{Status: next}, &confirmed); err != nil {
		if known {
			c.updateItem(id, prior)
		}
		c.surface(err)
		return err
	}
	c.updateItem(id, confirmed)
	return nil
}

// Merge applies a server-push alert frame in place, without a refetch.
// Unknown ids are appended; frames that would move an alert's status backward
// along its lifecycle are dropped.
func (c *Alerts) Merge(data any) {
	incoming, err := decodeEntity[models.Alert](data)
	if err != nil || incoming.ID == "" {
		return
	}
	if existing, ok := c.item(incoming.ID); ok {
		if existing.Status != incoming.Status && !models.CanTransitionAlert(existing.Status, incoming.Status) {
			return
		}
	}
	c.updateItem(incoming.ID, incoming)
}

// BindBus subscribes the controller to alert push frames; the returned
// function unsubscribes it.
func (c *Alerts) BindBus(b *bus.Bus) func() {
	return b.Subscribe(models.EventAlert, func(msg models.PushMessage) { c.Merge(msg.Data) })
}
