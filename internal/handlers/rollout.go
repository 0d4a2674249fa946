package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleetops/internal/middleware"
	"fleetops/internal/models"
	"fleetops/internal/store"
)

func (a *API) ListOtaUpdates(c *gin.Context) {
	a.list(c, store.KindOtaUpdates, otaUpdateFilters)
}

func (a *API) GetOtaUpdate(c *gin.Context) {
	a.find(c, store.KindOtaUpdates, c.Param("id"))
}

// CreateOtaUpdate schedules a rollout against a single truck or a fleet.
func (a *API) CreateOtaUpdate(c *gin.Context) {
	var req models.CreateOtaUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid update payload: "+err.Error())
		return
	}
	if err := middleware.ValidatePayload(req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.TruckID == nil && req.FleetID == nil {
		fail(c, http.StatusBadRequest, "update requires a truck_id or fleet_id target")
		return
	}
	if req.TruckID != nil {
		if _, err := a.store.Find(store.KindTrucks, *req.TruckID); err != nil {
			fail(c, http.StatusNotFound, "truck not found: "+*req.TruckID)
			return
		}
	}

	now := time.Now().UTC()
	update := models.OtaUpdate{
		ID:             uuid.NewString(),
		UpdateID:       "UPDATE-" + uuid.NewString()[:8],
		TruckID:        req.TruckID,
		FleetID:        req.FleetID,
		Version:        middleware.SanitizeString(req.Version),
		Target:         req.Target,
		URL:            req.URL,
		Checksum:       req.Checksum,
		Signature:      req.Signature,
		SizeBytes:      req.SizeBytes,
		Priority:       req.Priority,
		RequiresReboot: req.RequiresReboot,
		Deadline:       req.Deadline,
		Meta:           req.Meta,
		Status:         models.OtaPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	doc, err := store.ToDoc(update)
	if err != nil {
		failErr(c, err)
		return
	}
	if _, err := a.store.Upsert(store.KindOtaUpdates, update.ID, doc); err != nil {
		failErr(c, err)
		return
	}
	created(c, update)
}

// UpdateOtaUpdate advances a rollout through its pipeline. Status moves are
// checked against the transition graph; an illegal move is a conflict.
func (a *API) UpdateOtaUpdate(c *gin.Context) {
	id := c.Param("id")
	var req models.UpdateOtaUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid update payload: "+err.Error())
		return
	}
	if err := middleware.ValidatePayload(req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	update, err := store.FindAs[models.OtaUpdate](a.store, store.KindOtaUpdates, id)
	if err != nil {
		fail(c, http.StatusNotFound, "update not found: "+id)
		return
	}

	now := time.Now().UTC()
	if req.Status != nil {
		if err := models.TransitionOta(update.Status, *req.Status); err != nil {
			fail(c, http.StatusConflict, err.Error())
			return
		}
		if update.Status == models.OtaPending && update.StartedAt == nil {
			update.StartedAt = &now
		}
		update.Status = *req.Status
		if models.TerminalOta(update.Status) {
			if update.Status == models.OtaSuccess {
				update.ProgressPercent = 100
			}
			if update.CompletedAt == nil {
				update.CompletedAt = &now
			}
		}
	}
	if req.ProgressPercent != nil {
		update.ProgressPercent = models.ClampPercent(*req.ProgressPercent)
	}
	if req.LastError != nil {
		update.LastError = req.LastError
	}
	update.UpdatedAt = now

	doc, err := store.ToDoc(update)
	if err != nil {
		failErr(c, err)
		return
	}
	if _, err := a.store.Upsert(store.KindOtaUpdates, id, doc); err != nil {
		failErr(c, err)
		return
	}
	ok(c, update)
}

func (a *API) ListCommands(c *gin.Context) {
	a.list(c, store.KindRemoteCommands, commandFilters)
}

func (a *API) GetCommand(c *gin.Context) {
	a.find(c, store.KindRemoteCommands, c.Param("id"))
}

// CreateCommand issues a remote command to a truck or a fleet broadcast.
func (a *API) CreateCommand(c *gin.Context) {
	var req models.CreateRemoteCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid command payload: "+err.Error())
		return
	}
	if err := middleware.ValidatePayload(req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.TruckID == nil && req.FleetID == nil {
		fail(c, http.StatusBadRequest, "command requires a truck_id or fleet_id target")
		return
	}
	if req.TruckID != nil {
		if _, err := a.store.Find(store.KindTrucks, *req.TruckID); err != nil {
			fail(c, http.StatusNotFound, "truck not found: "+*req.TruckID)
			return
		}
	}

	now := time.Now().UTC()
	cmd := models.RemoteCommand{
		ID:          uuid.NewString(),
		CommandID:   "CMD-" + uuid.NewString()[:8],
		TruckID:     req.TruckID,
		FleetID:     req.FleetID,
		CommandType: req.CommandType,
		Parameters:  req.Parameters,
		IssuedAt:    now,
		Deadline:    req.Deadline,
		RequiresAck: req.RequiresAck,
		Status:      models.CmdPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	doc, err := store.ToDoc(cmd)
	if err != nil {
		failErr(c, err)
		return
	}
	if _, err := a.store.Upsert(store.KindRemoteCommands, cmd.ID, doc); err != nil {
		failErr(c, err)
		return
	}
	created(c, cmd)
}

// UpdateCommand advances a command's lifecycle, stamping completion on
// terminal states.
func (a *API) UpdateCommand(c *gin.Context) {
	id := c.Param("id")
	var req models.UpdateRemoteCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid command payload: "+err.Error())
		return
	}

	cmd, err := store.FindAs[models.RemoteCommand](a.store, store.KindRemoteCommands, id)
	if err != nil {
		fail(c, http.StatusNotFound, "command not found: "+id)
		return
	}

	now := time.Now().UTC()
	if req.Status != nil {
		if err := models.TransitionCommand(cmd.Status, *req.Status); err != nil {
			fail(c, http.StatusConflict, err.Error())
			return
		}
		cmd.Status = *req.Status
		if models.TerminalCommand(cmd.Status) && cmd.CompletedAt == nil {
			cmd.CompletedAt = &now
		}
	}
	if req.Result != nil {
		cmd.Result = req.Result
	}
	if req.Error != nil {
		cmd.Error = req.Error
	}
	cmd.UpdatedAt = now

	doc, err := store.ToDoc(cmd)
	if err != nil {
		failErr(c, err)
		return
	}
	if _, err := a.store.Upsert(store.KindRemoteCommands, id, doc); err != nil {
		failErr(c, err)
		return
	}
	ok(c, cmd)
}
