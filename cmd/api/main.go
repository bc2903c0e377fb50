package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/smilecare-booking/internal/api/router"
	"github.com/wolfman30/smilecare-booking/internal/booking"
	"github.com/wolfman30/smilecare-booking/internal/clinic"
	appconfig "github.com/wolfman30/smilecare-booking/internal/config"
	"github.com/wolfman30/smilecare-booking/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/smilecare-booking/internal/http/middleware"
	"github.com/wolfman30/smilecare-booking/internal/observability/metrics"
	"github.com/wolfman30/smilecare-booking/internal/orchestrator"
	"github.com/wolfman30/smilecare-booking/internal/session"
	"github.com/wolfman30/smilecare-booking/pkg/logging"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewWithWriter(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	logger.Info("starting smilecare booking API",
		"env", cfg.Env,
		"port", cfg.Port,
		"clinic", cfg.ClinicName,
	)

	if cfg.IsProduction() && len(cfg.CORSAllowedOrigins) == 0 {
		logger.Warn("CORS_ALLOWED_ORIGINS is empty; browser clients on other origins will be blocked")
	}

	a := newApp(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go a.store.Run(ctx, cfg.SessionSweepInterval)
	go a.limiter.Run(ctx)

	go func() {
		logger.Info("server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

type app struct {
	server   *http.Server
	store    *session.Store
	limiter  *httpmiddleware.RateLimiter
	registry *prometheus.Registry
}

func newApp(cfg *appconfig.Config, logger *logging.Logger) *app {
	registry, metricsHandler := setupMetrics()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	adapter := booking.NewManualHandoffAdapter(
		booking.NewLogSender(logger),
		booking.ManualHandoffConfig{
			HandoffNotificationPhone: cfg.HandoffNotificationPhone,
			HandoffNotificationEmail: cfg.HandoffNotificationEmail,
		},
		logger.Component("booking.handoff"),
	)

	orchLogger := logger.Component("orchestrator")
	store := session.NewStore(session.Config{
		TTL:     cfg.SessionTTL,
		Metrics: bookingMetrics,
		Logger:  logger,
		Factory: func(id string) *orchestrator.Orchestrator {
			return orchestrator.New(orchestrator.Config{
				SessionID:  id,
				ClinicName: cfg.ClinicName,
				Adapter:    adapter,
				Metrics:    bookingMetrics,
				Logger:     orchLogger,
			})
		},
	})

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	routerCfg := &router.Config{
		Logger:             logger,
		BookingHandler:     handlers.NewBookingHandler(store, logger),
		FunnelHandler:      clinic.NewFunnelHandler(registry, logger),
		RateLimiter:        limiter,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.MetricsEnabled {
		routerCfg.MetricsHandler = metricsHandler
	}

	return &app{
		server: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router.New(routerCfg),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:    store,
		limiter:  limiter,
		registry: registry,
	}
}

func setupMetrics() (*prometheus.Registry, http.Handler) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
