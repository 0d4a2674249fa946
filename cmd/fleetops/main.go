package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"fleetops/internal/handlers"
	"fleetops/internal/manager"
	"fleetops/internal/middleware"
	"fleetops/internal/seed"
	"fleetops/internal/store"
	"fleetops/internal/utils"
	"fleetops/internal/version"
)

const (
	envPort          = "FLEETOPS_PORT"
	envDataDir       = "FLEETOPS_DATA_DIR"
	envSeedCount     = "FLEETOPS_SEED_COUNT"
	envAdminPassword = "FLEETOPS_ADMIN_PASSWORD"
	envFeedInterval  = "FLEETOPS_FEED_INTERVAL"
	envUseTLS        = "FLEETOPS_USE_TLS"
	envTLSCert       = "FLEETOPS_TLS_CERT"
	envTLSKey        = "FLEETOPS_TLS_KEY"
)

type App struct {
	store       *store.Store
	users       *manager.UserStore
	authService *middleware.AuthService
	wsHub       *middleware.Hub
	rateLimiter *middleware.RateLimiter
	sampler     *manager.Sampler
	liveFeed    *manager.LiveFeed
	seeder      *seed.Seeder
	api         *handlers.API
	logger      *utils.Logger
	port        int
	tlsEnabled  bool
	tlsCertPath string
	tlsKeyPath  string
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string) bool {
	val := os.Getenv(key)
	if val == "" {
		return false
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false
	}
	return parsed
}

func dataDir() string {
	if dir := os.Getenv(envDataDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "fleetops")
	}
	return filepath.Join(home, ".fleetops")
}

func main() {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	dir := dataDir()
	logger := utils.NewLogger(filepath.Join(dir, "fleetops.log"))
	defer logger.Close()

	backend, err := store.NewFileBackend(filepath.Join(dir, "data"))
	if err != nil {
		log.Fatalf("Data directory unavailable: %v", err)
	}
	st, err := store.Open(backend)
	if err != nil {
		log.Fatalf("Store failed to open: %v", err)
	}

	app := &App{
		store:       st,
		users:       manager.NewUserStore(filepath.Join(dir, "users.json")),
		authService: middleware.NewAuthService(),
		rateLimiter: middleware.NewRateLimiter(rate.Every(time.Minute/100), 10),
		sampler:     manager.NewSampler(),
		seeder:      seed.NewSeeder(st, logger),
		logger:      logger,
		port:        envInt(envPort, 8080),
		tlsEnabled:  envBool(envUseTLS),
		tlsCertPath: os.Getenv(envTLSCert),
		tlsKeyPath:  os.Getenv(envTLSKey),
	}
	app.wsHub = middleware.NewHub(logger)

	if err := app.users.Load(); err != nil {
		log.Fatalf("User store failed to load: %v", err)
	}
	if err := app.bootstrapAdmin(); err != nil {
		log.Fatalf("Admin bootstrap failed: %v", err)
	}

	seedCount := envInt(envSeedCount, 10)
	if err := app.seeder.Seed(seedCount); err != nil {
		log.Fatalf("Fleet seeding failed: %v", err)
	}

	go app.wsHub.Run()
	app.sampler.Start()
	feedInterval := time.Duration(envInt(envFeedInterval, 10)) * time.Second
	app.liveFeed = manager.NewLiveFeed(st, app.wsHub, app.seeder, logger, feedInterval)
	app.liveFeed.Start()

	app.api = handlers.New(handlers.Config{
		Store:     st,
		Hub:       app.wsHub,
		Auth:      app.authService,
		Users:     app.users,
		Sampler:   app.sampler,
		Seeder:    app.seeder,
		Logger:    logger,
		SeedCount: seedCount,
	})

	r := app.setupRouter()

	srv := &http.Server{
		Addr:           ":" + strconv.Itoa(app.port),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	if app.tlsEnabled {
		if app.tlsCertPath == "" || app.tlsKeyPath == "" {
			log.Fatalf("%s is enabled but %s or %s not provided", envUseTLS, envTLSCert, envTLSKey)
		}
		go func() {
			log.Printf("Starting HTTPS server on port %d (%s)", app.port, version.String())
			if err := srv.ListenAndServeTLS(app.tlsCertPath, app.tlsKeyPath); err != nil && err != http.ErrServerClosed {
				log.Fatalf("HTTPS server failed to start: %v", err)
			}
		}()
	} else {
		go func() {
			log.Printf("Starting server on port %d (%s)", app.port, version.String())
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Server failed to start: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	app.liveFeed.Stop()
	app.sampler.Stop()
	app.rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// bootstrapAdmin creates the initial admin account on a fresh install. The
// password comes from the environment, or is generated and printed once so
// the operator can log in and change it.
func (app *App) bootstrapAdmin() error {
	if !app.users.IsEmpty() {
		return nil
	}

	password := os.Getenv(envAdminPassword)
	generated := false
	if password == "" {
		buf := make([]byte, 12)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("generate admin password: %w", err)
		}
		password = hex.EncodeToString(buf)
		generated = true
	}

	hash, err := app.authService.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := app.users.CreateUser("admin", "Administrator", hash, manager.RoleAdmin); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}
	if generated {
		log.Printf("Created admin account with password: %s", password)
		log.Printf("Set %s to choose your own on first boot.", envAdminPassword)
	} else {
		log.Println("Created admin account from environment")
	}
	return nil
}

func (app *App) setupRouter() *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))

	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	// Rate limiting - 100 requests per minute per IP
	r.Use(app.rateLimiter.Middleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"version":    version.String(),
			"ws_clients": app.wsHub.GetClientCount(),
		})
	})

	app.api.RegisterRoutes(r)

	return r
}
