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

	"jobclicks/internal/delivery"
	"jobclicks/internal/infrastructure"
	"jobclicks/internal/usecase"
	"jobclicks/pkg/config"
	"jobclicks/pkg/logger"
	"jobclicks/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	log.Info("Starting server")

	m := metrics.New()

	client, cache, err := infrastructure.NewAnalyticsClientFromConfig(cfg, log, m)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize analytics client")
	}
	if cache != nil {
		defer cache.Close()
	}

	exporter := infrastructure.NewSinkClient(cfg.Export.SinkURL, cfg.Export.SinkSecret, cfg.Analytics.RequestTimeout, log, m)
	sessions := infrastructure.NewSessionRepository[*usecase.Session](log)

	dashboardService := usecase.NewDashboardService(client, exporter, sessions, log, m)
	comparisonService := usecase.NewComparisonService(client, log, m)

	handlers := delivery.NewHTTPHandlers(dashboardService, comparisonService, log)
	router := delivery.NewHTTPRouter(handlers, log, m, prometheus.DefaultGatherer, cfg.Server.HandlerTimeout).SetupRoutes()

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go dashboardService.RunSessionSweeper(ctx, cfg.Session.SweepInterval, cfg.Session.IdleTTL)

	go func() {
		log.WithFields(map[string]any{
			"port":           cfg.Server.Port,
			"analytics_url":  cfg.Analytics.BaseURL,
			"range_cache":    cfg.Cache.Enabled,
			"export_enabled": cfg.Export.SinkURL != "",
		}).Info("HTTP server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
