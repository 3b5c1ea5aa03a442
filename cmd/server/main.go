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

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"energy-calculator/internal/chart"
	"energy-calculator/internal/config"
	"energy-calculator/internal/delivery"
	"energy-calculator/internal/handlers"
	"energy-calculator/internal/repository"
	"energy-calculator/internal/services"
	"energy-calculator/pkg/database"
	"energy-calculator/pkg/logging"
	"energy-calculator/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("energy-api", version, logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting energy calculator API server", logging.Fields{
		"version":          version,
		"server_host":      cfg.Server.Host,
		"server_port":      cfg.Server.Port,
		"database_enabled": cfg.Database.Enabled,
		"webhook_enabled":  cfg.Webhook.URL != "",
	})

	metricsCollector := metrics.NewCollector("energy_calculator")

	// Optional lead audit store
	var (
		leadRepo repository.LeadRepository
		recorder delivery.Recorder
		health   handlers.HealthChecker
	)
	if cfg.Database.Enabled {
		db, err := database.NewPostgresDB(cfg.Database.Postgres(), logger, metricsCollector)
		if err != nil {
			logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
		}
		defer db.Close()

		leadRepo = repository.NewLeadRepository(db, logger, metricsCollector)
		recorder = leadRepo
		health = leadRepo
	}

	// Lead delivery
	var sender delivery.Sender = delivery.DisabledSender{}
	if cfg.Webhook.URL != "" {
		sender = delivery.NewWebhookSender(cfg.Webhook.URL, cfg.Webhook.Timeout, logger)
	}
	dispatcher := delivery.NewDispatcher(sender, recorder, cfg.Webhook.QueueSize, cfg.Webhook.Timeout, logger, metricsCollector)
	dispatcher.Start()

	// Initialize services
	projectionService := services.NewProjectionService(logger, metricsCollector)
	applicationService := services.NewApplicationService(dispatcher, logger, metricsCollector)
	chartRegistry := chart.NewRegistry(cfg.Chart.MaxLive, metricsCollector)

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go applicationService.RunSweeper(sweepCtx, cfg.Session.SweepInterval, cfg.Session.IdleTTL)
	go chartRegistry.RunSweeper(sweepCtx, cfg.Session.SweepInterval, cfg.Chart.IdleTTL)

	// Setup router
	router := mux.NewRouter()
	router.Use(handlers.RequestID, handlers.Instrument(metricsCollector, logger))

	handlers.NewProjectionHandler(projectionService, chartRegistry, logger, metricsCollector).RegisterRoutes(router)
	handlers.NewApplicationHandler(applicationService, leadRepo, logger, metricsCollector).RegisterRoutes(router)
	handlers.NewSystemHandler(health, logger, metricsCollector).RegisterRoutes(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	stopSweeper()

	// Accepted submissions still in the queue are delivered before exit.
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Delivery queue not drained", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
