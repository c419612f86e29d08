package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/facilitymap/internal/adapters/http"
	natsadapter "github.com/samirrijal/facilitymap/internal/adapters/nats"
	"github.com/samirrijal/facilitymap/internal/adapters/postgres"
	"github.com/samirrijal/facilitymap/internal/adapters/valkey"
	"github.com/samirrijal/facilitymap/internal/core/ports"
	"github.com/samirrijal/facilitymap/internal/core/usecases"
	"github.com/samirrijal/facilitymap/internal/pkg/config"
	"github.com/samirrijal/facilitymap/internal/pkg/logging"
	"github.com/samirrijal/facilitymap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("facilitymap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), 10)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache and NATS are optional. Keep the interfaces nil when a
	// backend is down so services skip it instead of calling a nil pointer.
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	var publisherSvc ports.EventPublisher
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer publisher.Close()
		publisherSvc = publisher
	}

	// Raw NATS connection for the WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	// Repos and use cases
	facilityRepo := postgres.NewFacilityRepo(db)
	mapSvc := usecases.NewMapDataService(facilityRepo, cacheSvc, cfg.Map.CacheTTL)
	facilitySvc := usecases.NewFacilityService(facilityRepo, facilityRepo, mapSvc, publisherSvc)

	// Writes made by other replicas invalidate this replica's view too.
	if publisher != nil {
		subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer subscriber.Close()
			if err := subscriber.SubscribeFacilityEvents(ctx, mapSvc.HandleFacilityEvent); err != nil {
				slog.Warn("subscribe facility events failed", "error", err)
			}
		}
	}

	deps := &http.Dependencies{
		Facilities:  facilitySvc,
		Maps:        mapSvc,
		NATS:        natsConn,
		DB:          db,
		Cache:       cache,
		ContainerID: cfg.Map.ContainerID,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Facility Map API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, If-None-Match",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
