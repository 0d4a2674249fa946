package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetops/internal/models"
	"fleetops/internal/store"
)

func (a *API) ListAlerts(c *gin.Context) {
	a.list(c, store.KindAlerts, alertFilters)
}

func (a *API) GetAlert(c *gin.Context) {
	a.find(c, store.KindAlerts, c.Param("id"))
}

// UpdateAlert moves an alert along its lifecycle. Transitions only move
// forward; an attempt to walk the graph backwards is a conflict, not a
// validation error, since the record exists and the payload is well-formed.
func (a *API) UpdateAlert(c *gin.Context) {
	id := c.Param("id")
	var req models.UpdateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid alert payload: "+err.Error())
		return
	}

	alert, err := store.FindAs[models.Alert](a.store, store.KindAlerts, id)
	if err != nil {
		fail(c, http.StatusNotFound, "alert not found: "+id)
		return
	}

	if err := models.TransitionAlert(alert.Status, req.Status); err != nil {
		fail(c, http.StatusConflict, err.Error())
		return
	}

	now := time.Now().UTC()
	alert.Status = req.Status
	switch req.Status {
	case models.AlertAcknowledged:
		if alert.AcknowledgedAt == nil {
			alert.AcknowledgedAt = &now
		}
	case models.AlertResolved:
		if alert.AcknowledgedAt == nil {
			alert.AcknowledgedAt = &now
		}
		if alert.ResolvedAt == nil {
			alert.ResolvedAt = &now
		}
	}
	alert.UpdatedAt = now

	doc, err := store.ToDoc(alert)
	if err != nil {
		failErr(c, err)
		return
	}
	if _, err := a.store.Upsert(store.KindAlerts, id, doc); err != nil {
		failErr(c, err)
		return
	}

	if a.hub != nil {
		a.hub.PushEvent(models.EventAlert, alert)
	}
	ok(c, alert)
}
