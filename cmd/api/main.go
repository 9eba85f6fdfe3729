package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/harborvet/portal-api/internal/api/router"
	"github.com/harborvet/portal-api/internal/availability"
	appconfig "github.com/harborvet/portal-api/internal/config"
	"github.com/harborvet/portal-api/internal/directory"
	"github.com/harborvet/portal-api/internal/geocode"
	"github.com/harborvet/portal-api/internal/http/handlers"
	"github.com/harborvet/portal-api/internal/intake"
	"github.com/harborvet/portal-api/internal/notify"
	"github.com/harborvet/portal-api/internal/observability/metrics"
	"github.com/harborvet/portal-api/internal/publicbook"
	"github.com/harborvet/portal-api/internal/routing"
	"github.com/harborvet/portal-api/internal/wizard"
	"github.com/harborvet/portal-api/pkg/logging"
)

func main() {
	// Local development convenience; production sets real env vars.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting portal API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"practice_id", cfg.PracticeID,
	)

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	portalMetrics := metrics.NewPortalMetrics(registry)

	// Wizard session store
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	var store wizard.Store = wizard.NewRedisStore(redisClient, cfg.SessionTTL)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, sessions held in memory only", "error", err)
		store = wizard.NewMemoryStore()
	}
	cancelPing()

	// Scheduling collaborators
	geocoder := geocode.NewClient(cfg.GeocodeBaseURL, cfg.GeocodeMinLevel, logger)
	routingClient := routing.NewClient(cfg.RoutingBaseURL, cfg.RoutingAPIKey, logger)
	publicBook := publicbook.NewClient(cfg.PublicBookBaseURL, logger)
	matcher := availability.NewMatcher(geocoder, routingClient, publicBook, cfg.PracticeID, logger,
		availability.WithWindowDays(cfg.AvailabilityWindowDays),
		availability.WithMetrics(portalMetrics),
	)

	// Directory clients
	dir := directory.NewClient(cfg.DirectoryBaseURL, cfg.DirectoryAPIKey, logger)
	publicDir := directory.NewPublicClient(cfg.PublicDirectoryBaseURL, logger)

	// Request archive (optional)
	var repo intake.Repository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = intake.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, request archive disabled")
	}

	// Confirmation email (optional)
	emailSender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
	var notifier *notify.Service
	if emailSender != nil {
		notifier = notify.NewService(emailSender, cfg.PracticeName, logger)
	} else {
		logger.Warn("SENDGRID_API_KEY not set, confirmation email disabled")
		notifier = notify.NewService(nil, cfg.PracticeName, logger)
	}

	submitter := intake.NewSubmitter(cfg.SubmissionURL, cfg.SubmissionAPIKey, logger)
	finalizer := intake.NewService(cfg.PracticeID, submitter, repo, notifier, logger)

	controller := wizard.NewController(wizard.ControllerConfig{
		Store:           store,
		Directory:       dir,
		PublicDirectory: publicDir,
		Matcher:         matcher,
		Finalizer:       finalizer,
		PracticeID:      cfg.PracticeID,
		EmailProbeWait:  cfg.EmailProbeWait,
		Logger:          logger,
		Metrics:         portalMetrics,
	})

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		PortalHandler:      handlers.NewPortalHandler(controller, logger),
		PortalJWTSecret:    cfg.PortalJWTSecret,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: splitOrigins(cfg.CORSAllowedOrigins),
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
