package controller

import (
	"context"
	"time"

	"fleetops/internal/apierr"
	"fleetops/internal/gateway"
	"fleetops/internal/models"
)

// OtaUpdates manages the OTA rollout view.
type OtaUpdates struct {
	*Collection[models.OtaUpdate]
}

// NewOtaUpdates builds the OTA update controller over the given gateway.
func NewOtaUpdates(api *gateway.Client) *OtaUpdates {
	return &OtaUpdates{newCollection(api, "/ota/updates", func(u models.OtaUpdate) string { return u.ID })}
}

// CreateUpdate schedules a new rollout and adds it to local state.
func (c *OtaUpdates) CreateUpdate(ctx context.Context, req models.CreateOtaUpdateRequest) (models.OtaUpdate, error) {
	var created models.OtaUpdate
	if err := c.api.Post(ctx, c.path, req, &created); err != nil {
		c.surface(err)
		return models.OtaUpdate{}, err
	}
	c.updateItem(created.ID, created)
	return created, nil
}

// AdvanceUpdate moves an update along its pipeline and/or reports progress,
// applying the change optimistically and rolling back on failure.
func (c *OtaUpdates) AdvanceUpdate(ctx context.Context, id string, req models.UpdateOtaUpdateRequest) (models.OtaUpdate, error) {
	prior, known := c.item(id)
	if known && req.Status != nil && *req.Status != prior.Status && !models.CanTransitionOta(prior.Status, *req.Status) {
		err := apierr.New(apierr.ValidationFailure, "update cannot move from %s to %s", prior.Status, *req.Status)
		c.surface(err)
		return models.OtaUpdate{}, err
	}

	if known {
		now := time.Now().UTC()
		optimistic := prior
		optimistic.UpdatedAt = now
		if req.Status != nil {
			optimistic.Status = *req.Status
			if optimistic.StartedAt == nil && *req.Status != models.OtaPending {
				optimistic.StartedAt = &now
			}
			if models.TerminalOta(*req.Status) {
				optimistic.ProgressPercent = 100
				if optimistic.CompletedAt == nil {
					optimistic.CompletedAt = &now
				}
			}
		}
		if req.ProgressPercent != nil {
			optimistic.ProgressPercent = models.ClampPercent(*req.ProgressPercent)
		}
		if req.LastError != nil {
			optimistic.LastError = req.LastError
		}
		c.updateItem(id, optimistic)
	}

	var confirmed models.OtaUpdate
	if err := c.api.Put(ctx, c.path+"/"+id, req, &confirmed); err != nil {
		if known {
			c.updateItem(id, prior)
		}
		c.surface(err)
		return models.OtaUpdate{}, err
	}
	c.updateItem(id, confirmed)
	return confirmed, nil
}

// Commands manages the remote command view.
type Commands struct {
	*Collection[models.RemoteCommand]
}

// NewCommands builds the remote command controller over the given gateway.
func NewCommands(api *gateway.Client) *Commands {
	return &Commands{newCollection(api, "/ota/commands", func(cmd models.RemoteCommand) string { return cmd.ID })}
}

// CreateCommand issues a new command and adds it to local state.
func (c *Commands) CreateCommand(ctx context.Context, req models.CreateRemoteCommandRequest) (models.RemoteCommand, error) {
	var created models.RemoteCommand
	if err := c.api.Post(ctx, c.path, req, &created); err != nil {
		c.surface(err)
		return models.RemoteCommand{}, err
	}
	c.updateItem(created.ID, created)
	return created, nil
}

// Cancel moves a command to Cancelled.
func (c *Commands) Cancel(ctx context.Context, id string) (models.RemoteCommand, error) {
	cancelled := models.CmdCancelled
	return c.TransitionCommand(ctx, id, models.UpdateRemoteCommandRequest{Status: &cancelled})
}

// TransitionCommand advances a command's status, optimistically.
func (c *Commands) TransitionCommand(ctx context.Context, id string, req models.UpdateRemoteCommandRequest) (models.RemoteCommand, error) {
	prior, known := c.item(id)
	if known && req.Status != nil && *req.Status != prior.Status && !models.CanTransitionCommand(prior.Status, *req.Status) {
		err := apierr.New(apierr.ValidationFailure, "command cannot move from %s to %s", prior.Status, *req.Status)
		c.surface(err)
		return models.RemoteCommand{}, err
	}

	if known {
		now := time.Now().UTC()
		optimistic := prior
		optimistic.UpdatedAt = now
		if req.Status != nil {
			optimistic.Status = *req.Status
			if models.TerminalCommand(*req.Status) && optimistic.CompletedAt == nil {
				optimistic.CompletedAt = &now
			}
		}
		if req.Result != nil {
			optimistic.Result = req.Result
		}
		if req.Error != nil {
			optimistic.Error = req.Error
		}
		c.updateItem(id, optimistic)
	}

	var confirmed models.RemoteCommand
	if err := c.api.Put(ctx, c.path+"/"+id, req, &confirmed); err != nil {
		if known {
			c.updateItem(id, prior)
		}
		c.surface(err)
		return models.RemoteCommand{}, err
	}
	c.updateItem(id, confirmed)
	return confirmed, nil
}
