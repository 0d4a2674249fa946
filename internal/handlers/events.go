package handlers

import (
	"github.com/gin-gonic/gin"

	"fleetops/internal/store"
)

func (a *API) ListMlEvents(c *gin.Context) {
	a.list(c, store.KindMlEvents, mlEventFilters)
}

func (a *API) GetMlEvent(c *gin.Context) {
	a.find(c, store.KindMlEvents, c.Param("id"))
}

func (a *API) ListHealth(c *gin.Context) {
	a.list(c, store.KindHealthStatus, healthFilters)
}

func (a *API) GetHealth(c *gin.Context) {
	a.find(c, store.KindHealthStatus, c.Param("id"))
}
