package temporalclient

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"

	"github.com/flintapp/flint/internal/core/domain"
	"github.com/flintapp/flint/internal/workflows"
)

// Starter implements ports.MatchWorkflowStarter against a Temporal cluster.
type Starter struct {
	client    client.Client
	taskQueue string
}

// New dials the Temporal frontend.
func New(hostPort, taskQueue string) (*Starter, error) {
	c, err := client.Dial(client.Options{HostPort: hostPort})
	if err != nil {
		return nil, fmt.Errorf("temporal dial: %w", err)
	}
	return &Starter{client: c, taskQueue: taskQueue}, nil
}

// StartMatchNotification launches the notification workflow for a match.
// The workflow ID is derived from the match ID so re-delivery of the same
// match event does not start a second workflow.
func (s *Starter) StartMatchNotification(ctx context.Context, match *domain.Match) error {
	opts := client.StartWorkflowOptions{
		ID:        "match-notify-" + match.ID,
		TaskQueue: s.taskQueue,
	}
	_, err := s.client.ExecuteWorkflow(ctx, opts, workflows.MatchNotificationWorkflow, workflows.MatchNotificationInput{
		MatchID:  match.ID,
		ProfileA: match.ProfileA,
		ProfileB: match.ProfileB,
	})
	if err != nil {
		return fmt.Errorf("start match notification: %w", err)
	}
	return nil
}

// Client exposes the underlying Temporal client for worker registration.
func (s *Starter) Client() client.Client {
	return s.client
}

// Close shuts down the connection.
func (s *Starter) Close() {
	s.client.Close()
}
