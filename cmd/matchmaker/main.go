package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/flintapp/flint/internal/adapters/postgres"
	"github.com/flintapp/flint/internal/adapters/push"
	"github.com/flintapp/flint/internal/pkg/config"
	"github.com/flintapp/flint/internal/pkg/logging"
	"github.com/flintapp/flint/internal/workflows"
)

// The matchmaker worker executes match-notification workflows.
func main() {
	cfg, err := config.Load("flint-matchmaker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.FromEnv()

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.MatchNotificationWorkflow)
	w.RegisterActivity(&workflows.Activities{
		Profiles: postgres.NewProfileRepo(db),
		Matches:  postgres.NewMatchRepo(db),
		Notifier: push.New(slog.Default()),
	})

	slog.Info("matchmaker worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
