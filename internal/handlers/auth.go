package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetops/internal/middleware"
	"fleetops/internal/models"
)

// Login checks credentials against the account store and mints a JWT. Failed
// attempts share one message so usernames cannot be probed.
func (a *API) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid login payload: "+err.Error())
		return
	}
	if err := middleware.ValidatePayload(req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	username := middleware.SanitizeString(req.Username)
	user, found := a.users.Get(username)
	if !found || !a.auth.CheckPassword(req.Password, user.PasswordHash) {
		a.logf("Failed login attempt for %q from %s", username, c.ClientIP())
		fail(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := a.auth.GenerateToken(user.Username, string(user.Role))
	if err != nil {
		a.logf("Token mint failed for %q: %v", username, err)
		fail(c, http.StatusInternalServerError, "could not create session")
		return
	}

	ok(c, models.LoginResponse{Token: token, User: user.SessionUser()})
}

// Validate confirms the bearer token and returns its account, letting the
// client restore a session without re-prompting for credentials.
func (a *API) Validate(c *gin.Context) {
	username := c.GetString("username")
	user, found := a.users.Get(username)
	if !found {
		fail(c, http.StatusUnauthorized, "account no longer exists")
		return
	}
	ok(c, user.SessionUser())
}
