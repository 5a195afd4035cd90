package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/grachmannico95/shopease-be/internal/app"
	"github.com/grachmannico95/shopease-be/internal/config"
	"github.com/grachmannico95/shopease-be/internal/eventbus"
	"github.com/grachmannico95/shopease-be/internal/handler"
	"github.com/grachmannico95/shopease-be/internal/scheduler"
	"github.com/grachmannico95/shopease-be/internal/server"
	"github.com/grachmannico95/shopease-be/internal/service"
	"github.com/grachmannico95/shopease-be/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.Logging.Level)
	defer log.Sync()

	ctx := context.Background()
	log.Info(ctx, "Starting application")

	backend, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal(ctx, "Failed to open storage",
			"error", err,
		)
	}
	defer backend.Close()
	log.Info(ctx, "Repository initialized")

	eventBusCfg := &eventbus.Config{
		ChannelBuffer: cfg.EventBus.ChannelBufferSize,
		MaxRetries:    cfg.Worker.MaxRetries,
	}
	bus := eventbus.New(log.Named("eventbus"), eventBusCfg)

	scanConsumer := eventbus.NewScanConsumer(backend.Repo, log, cfg.Worker.PoolSize)
	if err := bus.Subscribe(eventbus.EventTypeScanRecorded, scanConsumer); err != nil {
		log.Fatal(ctx, "Failed to subscribe consumer",
			"error", err,
		)
	}

	if err := bus.Start(ctx); err != nil {
		log.Fatal(ctx, "Failed to start event bus",
			"error", err,
		)
	}
	log.Info(ctx, "Event bus initialized",
		"worker_count", scanConsumer.GetWorkerCount(),
	)

	sched := scheduler.New(backend.Repo, cfg.Scheduler.OfferExpirySpec, log.Named("scheduler"))
	if err := sched.Start(ctx); err != nil {
		log.Fatal(ctx, "Failed to start scheduler",
			"error", err,
		)
	}

	pipeline := backend.NewPipeline(cfg.Ingest, log)
	offerService := service.NewOfferService(backend.Repo, pipeline, log)
	salesService := service.NewSalesService(pipeline)
	catalogService := service.NewCatalogService(backend.Repo, log)
	feedbackService := service.NewFeedbackService(backend.Repo, log)
	analyticsService := service.NewAnalyticsService(backend.Repo, bus, log)
	log.Info(ctx, "Services initialized")

	checks := make(map[string]handler.Pinger, len(backend.Checks))
	for name, ping := range backend.Checks {
		checks[name] = handler.PingFunc(ping)
	}

	srv := server.New(cfg, log, server.Handlers{
		Offers:    handler.NewOfferHandler(offerService, log, cfg.Ingest.MaxUploadBytes),
		Sales:     handler.NewSalesHandler(salesService, log, cfg.Ingest.MaxUploadBytes),
		Catalog:   handler.NewCatalogHandler(catalogService, log),
		Feedback:  handler.NewFeedbackHandler(feedbackService, log),
		Analytics: handler.NewAnalyticsHandler(analyticsService, log),
		Health:    handler.NewHealthHandler(checks),
	})
	log.Info(ctx, "Handlers initialized")

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal(ctx, "Failed to start HTTP server",
				"error", err,
			)
		}
	}()

	log.Info(ctx, "Application started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop intake first, then drain queued scans, then the sweeper.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "HTTP server shutdown error",
			"error", err,
		)
	}

	if err := bus.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "Event bus shutdown error",
			"error", err,
		)
	}

	sched.Stop()

	log.Info(ctx, "Application stopped gracefully")
}
