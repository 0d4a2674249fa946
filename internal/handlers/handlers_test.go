package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"fleetops/internal/manager"
	"fleetops/internal/middleware"
	"fleetops/internal/models"
	"fleetops/internal/seed"
	"fleetops/internal/store"
)

type testEnv struct {
	api    *API
	router *gin.Engine
	store  *store.Store
	auth   *middleware.AuthService
	users  *manager.UserStore
	token  string
}

func newTestEnv(t *testing.T, seedCount int) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.Open(store.NewMemoryBackend())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	seeder := seed.NewSeeder(s, nil)
	if seedCount > 0 {
		if err := seeder.Seed(seedCount); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	auth := middleware.NewAuthService()
	users := manager.NewUserStore(filepath.Join(t.TempDir(), "users.json"))
	if err := users.Load(); err != nil {
		t.Fatalf("load users: %v", err)
	}
	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := users.CreateUser("ops", "Fleet Ops", hash, manager.RoleAdmin); err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := auth.GenerateToken("ops", string(manager.RoleAdmin))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	api := New(Config{
		Store:     s,
		Auth:      auth,
		Users:     users,
		Sampler:   manager.NewSampler(),
		Seeder:    seeder,
		SeedCount: seedCount,
	})
	router := gin.New()
	api.RegisterRoutes(router)

	return &testEnv{api: api, router: router, store: s, auth: auth, users: users, token: token}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeData[T any](t *testing.T, body []byte) T {
	t.Helper()
	var env models.APIResponse[T]
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !env.Success {
		t.Fatalf("envelope not successful: %s", env.Error)
	}
	return env.Data
}

func TestLoginIssuesToken(t *testing.T) {
	env := newTestEnv(t, 0)
	env.token = ""

	w := env.do(t, http.MethodPost, "/auth/login", models.LoginRequest{Username: "ops", Password: "secret123"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decodeData[models.LoginResponse](t, w.Body.Bytes())
	if resp.Token == "" {
		t.Error("expected a token in the login response")
	}
	if resp.User.Username != "ops" || resp.User.Role != "admin" {
		t.Errorf("unexpected session user %+v", resp.User)
	}

	env.token = resp.Token
	w = env.do(t, http.MethodGet, "/auth/validate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("validate status = %d", w.Code)
	}
	user := decodeData[models.SessionUser](t, w.Body.Bytes())
	if user.Username != "ops" {
		t.Errorf("validate returned %q, want ops", user.Username)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := newTestEnv(t, 0)
	env.token = ""
	w := env.do(t, http.MethodPost, "/auth/login", models.LoginRequest{Username: "ops", Password: "wrong-pass"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", w.Code)
	}
}

func TestEntityRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t, 0)
	env.token = ""
	w := env.do(t, http.MethodGet, "/trucks", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated /trucks status = %d, want 401", w.Code)
	}
}

func TestTruckCreateBackfillsTelemetry(t *testing.T) {
	env := newTestEnv(t, 0)

	w := env.do(t, http.MethodPost, "/trucks", models.CreateTruckRequest{
		Model:        "FH16",
		Make:         "Volvo",
		Year:         "2023",
		LicensePlate: "TRK001A",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	truck := decodeData[models.Truck](t, w.Body.Bytes())
	if truck.ID == "" || truck.Status != models.TruckOnline {
		t.Fatalf("unexpected created truck %+v", truck)
	}

	w = env.do(t, http.MethodGet, "/trucks/"+truck.ID+"/telemetry?limit=100", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("telemetry status = %d", w.Code)
	}
	page := decodeData[models.PaginatedResponse[models.TelemetryRecord]](t, w.Body.Bytes())
	if page.Total != 48 {
		t.Errorf("backfilled telemetry total = %d, want 48", page.Total)
	}
	for _, rec := range page.Data {
		if rec.TruckID != truck.ID {
			t.Fatalf("telemetry record references %q, want %q", rec.TruckID, truck.ID)
		}
	}
}

func TestTruckDeleteCascades(t *testing.T) {
	env := newTestEnv(t, 3)

	trucks, err := store.List[models.Truck](env.store, store.KindTrucks)
	if err != nil || len(trucks) == 0 {
		t.Fatalf("list trucks: %v", err)
	}
	victim := trucks[0]

	w := env.do(t, http.MethodDelete, "/trucks/"+victim.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}

	for _, kind := range []store.Kind{store.KindTelemetry, store.KindAlerts, store.KindMlEvents, store.KindHealthStatus} {
		for _, doc := range env.store.Get(kind) {
			if doc["truck_id"] == victim.ID {
				t.Errorf("%s still holds a record for deleted truck %s", kind, victim.ID)
			}
		}
	}

	w = env.do(t, http.MethodDelete, "/trucks/"+victim.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestAlertSeverityFilterMatchesGeneratedCounts(t *testing.T) {
	env := newTestEnv(t, 10)

	wantCritical := 0
	for _, doc := range env.store.Get(store.KindAlerts) {
		if doc["severity"] == string(models.SeverityCritical) {
			wantCritical++
		}
	}

	w := env.do(t, http.MethodGet, "/alerts?severity=Critical&limit=1000", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	page := decodeData[models.PaginatedResponse[models.Alert]](t, w.Body.Bytes())
	if page.Total != wantCritical {
		t.Errorf("filtered total = %d, want %d", page.Total, wantCritical)
	}
	for _, alert := range page.Data {
		if alert.Severity != models.SeverityCritical {
			t.Errorf("alert %s has severity %q in a Critical-only page", alert.ID, alert.Severity)
		}
	}
}

func TestAlertPaginationBoundary(t *testing.T) {
	env := newTestEnv(t, 0)

	alerts := make([]models.Alert, 0, 23)
	now := time.Now().UTC()
	for i := 0; i < 23; i++ {
		alerts = append(alerts, models.Alert{
			ID:          fmt.Sprintf("alert-%02d", i),
			TruckID:     "truck-1",
			Severity:    models.SeverityWarning,
			Status:      models.AlertTriggered,
			TriggeredAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	if err := store.PutList(env.store, store.KindAlerts, alerts); err != nil {
		t.Fatalf("put alerts: %v", err)
	}

	for _, tc := range []struct {
		page  int
		items int
	}{
		{1, 10}, {3, 3}, {4, 0},
	} {
		w := env.do(t, http.MethodGet, fmt.Sprintf("/alerts?page=%d&limit=10", tc.page), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("page %d status = %d", tc.page, w.Code)
		}
		page := decodeData[models.PaginatedResponse[models.Alert]](t, w.Body.Bytes())
		if len(page.Data) != tc.items {
			t.Errorf("page %d returned %d items, want %d", tc.page, len(page.Data), tc.items)
		}
		if page.Total != 23 {
			t.Errorf("page %d total = %d, want 23", tc.page, page.Total)
		}
	}
}

func TestAlertTransitionLifecycle(t *testing.T) {
	env := newTestEnv(t, 0)

	triggered := time.Now().UTC().Add(-time.Hour)
	alert := models.Alert{
		ID:          "alert-1",
		TruckID:     "truck-1",
		Severity:    models.SeverityCritical,
		Status:      models.AlertTriggered,
		TriggeredAt: triggered,
		CreatedAt:   triggered,
		UpdatedAt:   triggered,
	}
	if err := store.PutList(env.store, store.KindAlerts, []models.Alert{alert}); err != nil {
		t.Fatalf("put alert: %v", err)
	}

	w := env.do(t, http.MethodPut, "/alerts/alert-1", models.UpdateAlertRequest{Status: models.AlertAcknowledged})
	if w.Code != http.StatusOK {
		t.Fatalf("acknowledge status = %d, body %s", w.Code, w.Body.String())
	}
	updated := decodeData[models.Alert](t, w.Body.Bytes())
	if updated.Status != models.AlertAcknowledged {
		t.Errorf("status = %q, want Acknowledged", updated.Status)
	}
	if updated.AcknowledgedAt == nil || updated.AcknowledgedAt.Before(triggered) {
		t.Error("acknowledged_at not stamped after triggered_at")
	}

	w = env.do(t, http.MethodPut, "/alerts/alert-1", models.UpdateAlertRequest{Status: models.AlertResolved})
	if w.Code != http.StatusOK {
		t.Fatalf("resolve status = %d", w.Code)
	}

	w = env.do(t, http.MethodPut, "/alerts/alert-1", models.UpdateAlertRequest{Status: models.AlertAcknowledged})
	if w.Code != http.StatusConflict {
		t.Errorf("regression status = %d, want 409", w.Code)
	}
}

func TestOtaUpdateLifecycle(t *testing.T) {
	env := newTestEnv(t, 1)

	trucks, _ := store.List[models.Truck](env.store, store.KindTrucks)
	truckID := trucks[0].ID

	w := env.do(t, http.MethodPost, "/ota/updates", models.CreateOtaUpdateRequest{
		TruckID:  &truckID,
		Version:  "2.1.0",
		Target:   models.TargetAgent,
		URL:      "https://updates.fleetops.local/agent-2.1.0.tar.gz",
		Checksum: "sha256:deadbeef",
		Priority: models.PriorityHigh,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	update := decodeData[models.OtaUpdate](t, w.Body.Bytes())
	if update.Status != models.OtaPending {
		t.Fatalf("created update status = %q, want Pending", update.Status)
	}

	advance := func(status models.OtaStatus) *httptest.ResponseRecorder {
		return env.do(t, http.MethodPut, "/ota/updates/"+update.ID, models.UpdateOtaUpdateRequest{Status: &status})
	}

	for _, status := range []models.OtaStatus{models.OtaDownloading, models.OtaVerifying, models.OtaApplying, models.OtaSuccess} {
		if w := advance(status); w.Code != http.StatusOK {
			t.Fatalf("advance to %s status = %d, body %s", status, w.Code, w.Body.String())
		}
	}

	final, err := store.FindAs[models.OtaUpdate](env.store, store.KindOtaUpdates, update.ID)
	if err != nil {
		t.Fatalf("find update: %v", err)
	}
	if final.ProgressPercent != 100 {
		t.Errorf("final progress = %v, want 100", final.ProgressPercent)
	}
	if final.CompletedAt == nil || final.StartedAt == nil {
		t.Error("terminal update missing started_at/completed_at stamps")
	}

	if w := advance(models.OtaPending); w.Code != http.StatusConflict {
		t.Errorf("regression from terminal status = %d, want 409", w.Code)
	}
}

func TestCommandCancelStampsCompletion(t *testing.T) {
	env := newTestEnv(t, 1)

	trucks, _ := store.List[models.Truck](env.store, store.KindTrucks)
	truckID := trucks[0].ID

	w := env.do(t, http.MethodPost, "/ota/commands", models.CreateRemoteCommandRequest{
		TruckID:     &truckID,
		CommandType: models.CmdReboot,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	cmd := decodeData[models.RemoteCommand](t, w.Body.Bytes())

	cancelled := models.CmdCancelled
	w = env.do(t, http.MethodPut, "/ota/commands/"+cmd.ID, models.UpdateRemoteCommandRequest{Status: &cancelled})
	if w.Code != http.StatusOK {
		t.Fatalf("cancel status = %d", w.Code)
	}
	final := decodeData[models.RemoteCommand](t, w.Body.Bytes())
	if final.Status != models.CmdCancelled {
		t.Errorf("status = %q, want Cancelled", final.Status)
	}
	if final.CompletedAt == nil {
		t.Error("cancelled command missing completed_at")
	}
}

func TestResetRequiresAdmin(t *testing.T) {
	env := newTestEnv(t, 2)

	token, err := env.auth.GenerateToken("viewer", string(manager.RoleViewer))
	if err != nil {
		t.Fatalf("mint viewer token: %v", err)
	}
	env.token = token

	w := env.do(t, http.MethodPost, "/api/system/reset", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("viewer reset status = %d, want 403", w.Code)
	}
}

func TestResetRegeneratesFleet(t *testing.T) {
	env := newTestEnv(t, 2)

	trucks, _ := store.List[models.Truck](env.store, store.KindTrucks)
	if len(trucks) != 2 {
		t.Fatalf("seeded %d trucks, want 2", len(trucks))
	}
	before := trucks[0].ID

	w := env.do(t, http.MethodPost, "/api/system/reset", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d, body %s", w.Code, w.Body.String())
	}

	after, _ := store.List[models.Truck](env.store, store.KindTrucks)
	if len(after) != 2 {
		t.Fatalf("reseeded %d trucks, want 2", len(after))
	}
	for _, truck := range after {
		if truck.ID == before {
			t.Error("reset kept a pre-reset truck id; expected a fresh fleet")
		}
	}
}

func TestSystemMetricsUnavailableBeforeSampling(t *testing.T) {
	env := newTestEnv(t, 0)
	w := env.do(t, http.MethodGet, "/api/system/metrics", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("metrics status = %d, want 503 before first sample", w.Code)
	}
}

func TestListRejectsMalformedParams(t *testing.T) {
	env := newTestEnv(t, 0)

	w := env.do(t, http.MethodGet, "/alerts?page=0", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("page=0 status = %d, want 400", w.Code)
	}
	w = env.do(t, http.MethodGet, "/alerts?limit=nope", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("limit=nope status = %d, want 400", w.Code)
	}
	w = env.do(t, http.MethodGet, "/ml-events?min_confidence=0.9&max_confidence=0.1", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("min>max status = %d, want 400", w.Code)
	}
}
