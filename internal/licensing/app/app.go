package app

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/alert"
	httpapi "github.com/aussiebroadwan/daftar/internal/licensing/http"
	"github.com/aussiebroadwan/daftar/internal/licensing/metrics"
	"github.com/aussiebroadwan/daftar/internal/licensing/monitor"
	"github.com/aussiebroadwan/daftar/internal/licensing/notify"
	"github.com/aussiebroadwan/daftar/internal/licensing/service"
	"github.com/aussiebroadwan/daftar/internal/licensing/store/drivers/sqlite"
	"github.com/aussiebroadwan/daftar/pkg/httpx"
	"github.com/aussiebroadwan/daftar/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion is overridden at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application holds the license service and everything it depends on.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db        *sqlite.Store
	redis     *redis.Client
	publicKey *rsa.PublicKey

	alerts     *alert.Deduper
	dispatcher *notify.Dispatcher
	metrics    *metrics.Manager
	detector   *monitor.Detector
	scanner    *service.ExpiryScanner
	licenses   *service.BindingService

	server *http.Server
	router *httpapi.Router
}

func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "licensing",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	publicKey, err := LoadPublicKey(cfg, app.logger)
	if err != nil {
		return nil, err
	}
	app.publicKey = publicKey

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initAlerts(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the background workers and the HTTP server and blocks until a
// shutdown signal or a server failure.
func (app *Application) Run() error {
	app.dispatcher.Start()
	app.detector.Start()
	if app.scanner != nil {
		app.scanner.Start()
	}

	app.logger.Info("license service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown stops the server first so no new work arrives, then the
// workers, then drains notifications before closing storage.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down license service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.scanner != nil {
		app.scanner.Stop()
	}
	app.detector.Stop()

	if err := app.dispatcher.Stop(ctx); err != nil {
		app.logger.Warn("notification queue not drained", "error", err)
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("license service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.FileDSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initAlerts selects where alert dedup state lives.
func (app *Application) initAlerts() error {
	var backend alert.Backend

	switch app.cfg.AlertStateBackend {
	case "redis":
		if app.cfg.RedisURL == "" {
			return errors.New("ALERT_STATE_BACKEND=redis requires REDIS_URL")
		}
		opts, err := redis.ParseURL(app.cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		app.redis = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.redis.Ping(ctx).Err(); err != nil {
			_ = app.redis.Close()
			return fmt.Errorf("connect to redis: %w", err)
		}
		backend = alert.NewRedisBackend(app.redis)

	case "memory":
		app.logger.Warn("alert state is in memory, cooldowns reset on restart")
		backend = alert.NewMemoryBackend()

	case "sqlite", "":
		backend = alert.StoreBackend{States: app.db.AlertStates()}

	default:
		return fmt.Errorf("unknown ALERT_STATE_BACKEND %q", app.cfg.AlertStateBackend)
	}

	app.alerts = alert.NewDeduper(backend, app.logger)
	app.logger.Info("alert state backend ready", "backend", app.cfg.AlertStateBackend)
	return nil
}

func (app *Application) initServices() {
	dcfg := notify.DefaultDispatcherConfig()
	dcfg.Workers = app.cfg.NotifyWorkers
	dcfg.QueueSize = app.cfg.NotifyQueueSize
	if app.cfg.NotifyMaxAttempts > 0 {
		dcfg.MaxAttempts = uint(app.cfg.NotifyMaxAttempts)
	}
	app.dispatcher = notify.NewDispatcher(dcfg, buildSenders(app.cfg, app.logger), app.logger)

	app.detector = monitor.NewDetector(monitor.Config{
		Enabled:             app.cfg.MonitoringEnabled,
		Window:              app.cfg.MonitorWindow,
		Interval:            app.cfg.MonitorInterval,
		ErrorThreshold:      app.cfg.ErrorAlertThreshold,
		FailedAuthThreshold: app.cfg.FailedAuthThreshold,
		SlowThreshold:       app.cfg.SlowAlertThreshold,
		SlowRequest:         app.cfg.SlowRequestThreshold,
		Cooldown:            app.cfg.MonitorAlertCooldown,
		Recipient:           app.cfg.AdminEmail,
	}, app.alerts, app.dispatcher, app.logger)

	app.metrics = metrics.NewManager(app.detector)
	app.alerts.OnSuppressed = app.metrics.AlertSuppressed
	app.dispatcher.OnResult = journal(app.db.Activity(), app.metrics, app.logger)

	app.licenses = &service.BindingService{
		Store:     app.db,
		PublicKey: app.publicKey,
		Alerts:    app.alerts,
		Notifier:  app.dispatcher,
		Recipients: service.Recipients{
			Email: app.cfg.AdminEmail,
			Phone: app.cfg.AdminPhone,
		},
		Cooldown: app.cfg.AlertCooldown,
		Metrics:  app.metrics,
	}

	if app.cfg.ExpiryScanEnabled {
		app.scanner = service.NewExpiryScanner(
			app.db,
			app.alerts,
			app.dispatcher,
			app.cfg.AdminEmail,
			app.logger,
			app.cfg.ExpiryScanInterval,
		)
		app.scanner.ExpiredCooldown = app.cfg.AlertCooldown
	}

	if app.cfg.AdminEmail == "" && app.cfg.AdminPhone == "" {
		app.logger.Warn("no ADMIN_EMAIL or ADMIN_PHONE configured, alerts will not be sent")
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.publicKey, app.logger)

	router.LicenseService = app.licenses
	router.Monitor = app.detector
	router.Metrics = app.metrics.Handler()
	router.AdminAuth = httpx.AdminAuthConfig{
		JWTSecret:     []byte(app.cfg.AdminJWTSecret),
		ServiceTokens: app.cfg.AdminServiceTokens,
	}
	router.ApplyRoutes()

	app.router = router

	if len(app.cfg.AdminJWTSecret) == 0 && len(app.cfg.AdminServiceTokens) == 0 {
		app.logger.Warn("no admin credentials configured, the admin API is unreachable")
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
