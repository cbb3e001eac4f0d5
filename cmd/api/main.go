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

	"github.com/flintapp/flint/internal/adapters/http"
	natsadapter "github.com/flintapp/flint/internal/adapters/nats"
	"github.com/flintapp/flint/internal/adapters/postgres"
	"github.com/flintapp/flint/internal/adapters/temporalclient"
	"github.com/flintapp/flint/internal/adapters/valkey"
	"github.com/flintapp/flint/internal/core/ports"
	"github.com/flintapp/flint/internal/core/usecases"
	"github.com/flintapp/flint/internal/pkg/config"
	"github.com/flintapp/flint/internal/pkg/logging"
	"github.com/flintapp/flint/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("flint-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.FromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
	}

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer publisher.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Temporal (match notifications)
	var starter ports.MatchWorkflowStarter
	if tc, err := temporalclient.New(cfg.Temporal.HostPort, cfg.Temporal.TaskQueue); err != nil {
		slog.Warn("temporal unavailable, matches will not be notified", "error", err)
	} else {
		starter = tc
		defer tc.Close()
	}

	// Repos
	profileRepo := postgres.NewProfileRepo(db)
	venueRepo := postgres.NewVenueRepo(db)
	swipeRepo := postgres.NewSwipeRepo(db)
	matchRepo := postgres.NewMatchRepo(db)
	messageRepo := postgres.NewMessageRepo(db)

	// Use cases
	var pub ports.EventPublisher
	if publisher != nil {
		pub = publisher
	}
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}
	profileSvc := usecases.NewProfileService(profileRepo, cacheSvc, pub)
	discoverySvc := usecases.NewDiscoveryService(profileRepo, swipeRepo, cfg.Discovery.SampleFallback)
	venueSvc := usecases.NewVenueService(venueRepo, cacheSvc, cfg.Discovery.SampleFallback)
	matchSvc := usecases.NewMatchService(swipeRepo, matchRepo, pub, starter)
	chatSvc := usecases.NewChatService(matchRepo, messageRepo, pub)

	deps := &http.Dependencies{
		Profiles:        profileSvc,
		Discovery:       discoverySvc,
		Venues:          venueSvc,
		Matches:         matchSvc,
		Chat:            chatSvc,
		Publisher:       pub,
		Workflows:       starter,
		NATS:            natsConn,
		DB:              db,
		Cache:           cache,
		SigningKey:      cfg.Auth.SigningKey,
		DefaultRadiusKm: cfg.Discovery.DefaultRadiusKm,
		MaxRadiusKm:     cfg.Discovery.MaxRadiusKm,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Flint API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.flint.app",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
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

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
