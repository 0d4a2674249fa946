package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetops/internal/manager"
)

// SystemMetrics reports the latest host snapshot for the status page.
func (a *API) SystemMetrics(c *gin.Context) {
	if a.sampler == nil {
		fail(c, http.StatusServiceUnavailable, "metrics sampling disabled")
		return
	}
	snap := a.sampler.Snapshot()
	if snap == nil {
		fail(c, http.StatusServiceUnavailable, "metrics not yet sampled")
		return
	}
	ok(c, snap)
}

// ResetData wipes every collection and regenerates the synthetic fleet.
// Admin only; this destroys all session mutations.
func (a *API) ResetData(c *gin.Context) {
	if manager.Role(c.GetString("role")) != manager.RoleAdmin {
		fail(c, http.StatusForbidden, "reset requires the admin role")
		return
	}
	if err := a.store.Reset(); err != nil {
		failErr(c, err)
		return
	}
	if a.seeder != nil {
		if err := a.seeder.Seed(a.seedCount); err != nil {
			failErr(c, err)
			return
		}
	}
	a.logf("Fleet data reset by %q", c.GetString("username"))
	ok(c, gin.H{"reset": true})
}
