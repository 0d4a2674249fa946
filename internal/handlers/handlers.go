// Package handlers implements the REST surface of the fleet dashboard. Every
// response body is an envelope {data, success, message?, error?}; list
// endpoints additionally wrap their payload as {data, total, page, limit}.
// List endpoints share one filter -> sort -> paginate pipeline from the query
// package, so filtering behaves identically across all seven collections.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetops/internal/apierr"
	"fleetops/internal/manager"
	"fleetops/internal/middleware"
	"fleetops/internal/models"
	"fleetops/internal/query"
	"fleetops/internal/seed"
	"fleetops/internal/store"
	"fleetops/internal/utils"
)

// Config wires the API against its collaborators.
type Config struct {
	Store     *store.Store
	Hub       *middleware.Hub
	Auth      *middleware.AuthService
	Users     *manager.UserStore
	Sampler   *manager.Sampler
	Seeder    *seed.Seeder
	Logger    *utils.Logger
	SeedCount int
}

// API holds the handler set for the dashboard routes.
type API struct {
	store     *store.Store
	hub       *middleware.Hub
	auth      *middleware.AuthService
	users     *manager.UserStore
	sampler   *manager.Sampler
	seeder    *seed.Seeder
	log       *utils.Logger
	seedCount int
}

// New builds the handler set.
func New(cfg Config) *API {
	count := cfg.SeedCount
	if count <= 0 {
		count = 10
	}
	return &API{
		store:     cfg.Store,
		hub:       cfg.Hub,
		auth:      cfg.Auth,
		users:     cfg.Users,
		sampler:   cfg.Sampler,
		seeder:    cfg.Seeder,
		log:       cfg.Logger,
		seedCount: count,
	}
}

// RegisterRoutes mounts the REST surface. Login and the websocket upgrade are
// public; everything else sits behind bearer auth.
func (a *API) RegisterRoutes(r gin.IRouter) {
	r.POST("/auth/login", a.Login)
	if a.hub != nil {
		r.GET("/ws", a.hub.HandleWebSocket())
	}

	authed := r.Group("/", a.auth.RequireAPIAuth())

	authed.GET("/auth/validate", a.Validate)

	authed.GET("/trucks", a.ListTrucks)
	authed.POST("/trucks", a.CreateTruck)
	authed.GET("/trucks/:id", a.GetTruck)
	authed.PUT("/trucks/:id", a.UpdateTruck)
	authed.DELETE("/trucks/:id", a.DeleteTruck)
	authed.GET("/trucks/:id/telemetry", a.ListTruckTelemetry)

	authed.GET("/alerts", a.ListAlerts)
	authed.GET("/alerts/:id", a.GetAlert)
	authed.PUT("/alerts/:id", a.UpdateAlert)

	authed.GET("/ml-events", a.ListMlEvents)
	authed.GET("/ml-events/:id", a.GetMlEvent)

	authed.GET("/health", a.ListHealth)
	authed.GET("/health/:id", a.GetHealth)

	authed.GET("/ota/updates", a.ListOtaUpdates)
	authed.POST("/ota/updates", a.CreateOtaUpdate)
	authed.GET("/ota/updates/:id", a.GetOtaUpdate)
	authed.PUT("/ota/updates/:id", a.UpdateOtaUpdate)

	authed.GET("/ota/commands", a.ListCommands)
	authed.POST("/ota/commands", a.CreateCommand)
	authed.GET("/ota/commands/:id", a.GetCommand)
	authed.PUT("/ota/commands/:id", a.UpdateCommand)

	authed.GET("/api/system/metrics", a.SystemMetrics)
	authed.POST("/api/system/reset", a.ResetData)
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, models.APIResponse[any]{Data: data, Success: true})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, models.APIResponse[any]{Data: data, Success: true})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, models.APIResponse[any]{Success: false, Error: msg})
}

// failErr maps the error taxonomy onto HTTP statuses.
func failErr(c *gin.Context, err error) {
	switch apierr.KindOf(err) {
	case apierr.ValidationFailure:
		fail(c, http.StatusBadRequest, apierr.Message(err))
	case apierr.NotFound:
		fail(c, http.StatusNotFound, apierr.Message(err))
	case apierr.Unauthorized:
		fail(c, http.StatusUnauthorized, apierr.Message(err))
	default:
		fail(c, http.StatusInternalServerError, apierr.Message(err))
	}
}

// list runs the shared query pipeline over a collection snapshot and writes
// the paginated envelope.
func (a *API) list(c *gin.Context, kind store.Kind, specs []filterSpec) {
	f, s, page, limit, err := parseListParams(c, specs)
	if err != nil {
		failErr(c, err)
		return
	}
	result, err := query.Run(a.store.Get(kind), f, s, page, limit)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, models.PaginatedResponse[map[string]any]{
		Data:  result.Items,
		Total: result.Total,
		Page:  page,
		Limit: limit,
	})
}

// find writes a single record or a 404.
func (a *API) find(c *gin.Context, kind store.Kind, id string) {
	doc, err := a.store.Find(kind, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "record not found: "+id)
			return
		}
		failErr(c, err)
		return
	}
	ok(c, doc)
}
