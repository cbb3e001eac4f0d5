package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsadapter "github.com/flintapp/flint/internal/adapters/nats"
	"github.com/flintapp/flint/internal/adapters/postgres"
	"github.com/flintapp/flint/internal/core/domain"
	"github.com/flintapp/flint/internal/pkg/config"
	"github.com/flintapp/flint/internal/pkg/logging"
	"github.com/flintapp/flint/internal/pkg/proximity"
)

// The presence worker drains location pings off the broker and persists
// them, and bumps last_seen whenever a member sends a chat message. It is
// the only writer of profile positions, so the API never blocks on
// PostGIS during a location update burst.
func main() {
	cfg, err := config.Load("flint-presence")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.FromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	profileRepo := postgres.NewProfileRepo(db)

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeLocationPings(ctx, func(ctx context.Context, ping *domain.LocationPing) error {
		// Invalid coordinates would only fail in PostGIS and redeliver;
		// drop them here instead.
		if !(proximity.Coordinate{Lat: ping.Location.Lat, Lon: ping.Location.Lon}).Valid() {
			slog.Warn("dropping invalid location ping",
				"profile_id", ping.ProfileID, "lat", ping.Location.Lat, "lon", ping.Location.Lon)
			return nil
		}
		if err := profileRepo.UpdateLocation(ctx, ping.ProfileID, ping.Location, ping.Time); err != nil {
			slog.Error("persist location ping", "profile_id", ping.ProfileID, "error", err)
			return err
		}
		slog.Debug("location updated", "profile_id", ping.ProfileID)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe location pings: %v", err)
	}

	err = sub.SubscribeMessages(ctx, func(ctx context.Context, msg *domain.Message) error {
		// Sending a message counts as activity even without a position fix.
		p, err := profileRepo.GetByID(ctx, msg.SenderID)
		if err != nil {
			slog.Warn("sender lookup failed", "profile_id", msg.SenderID, "error", err)
			return nil // don't redeliver for a missing profile
		}
		if p.Location == nil {
			return nil
		}
		return profileRepo.UpdateLocation(ctx, msg.SenderID, *p.Location, msg.SentAt)
	})
	if err != nil {
		log.Fatalf("subscribe messages: %v", err)
	}

	slog.Info("presence worker started", "nats", cfg.NATS.URL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down presence worker", "signal", sig.String())
	cancel()
	// Give in-flight handlers time to finish
	time.Sleep(2 * time.Second)
}
