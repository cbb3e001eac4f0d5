package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// MatchNotificationInput carries everything the workflow needs to
// notify both members of a fresh match.
type MatchNotificationInput struct {
	MatchID  string `json:"match_id"`
	ProfileA string `json:"profile_a"`
	ProfileB string `json:"profile_b"`
}

// MatchNotificationWorkflow pushes a "you matched" notification to both
// members and records delivery on the match. Steps that succeed before a
// later one fails are compensated in reverse order so a half-notified
// match never stays marked as delivered.
func MatchNotificationWorkflow(ctx workflow.Context, input MatchNotificationInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("match notification started", "match_id", input.MatchID)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var compensations []func(workflow.Context) error
	compensate := func() {
		// Disconnected context so compensation runs even when the
		// workflow context is already cancelled.
		dctx, cancel := workflow.NewDisconnectedContext(ctx)
		defer cancel()
		dctx = workflow.WithActivityOptions(dctx, ao)
		for i := len(compensations) - 1; i >= 0; i-- {
			if err := compensations[i](dctx); err != nil {
				logger.Error("compensation failed", "match_id", input.MatchID, "error", err)
			}
		}
	}

	var a *Activities

	var pair MatchPair
	if err := workflow.ExecuteActivity(ctx, a.FetchMatchPair, input).Get(ctx, &pair); err != nil {
		logger.Error("fetch pair failed", "match_id", input.MatchID, "error", err)
		return err
	}

	if err := workflow.ExecuteActivity(ctx, a.NotifyProfile, NotifyInput{
		ProfileID:   input.ProfileA,
		Counterpart: pair.NameB,
	}).Get(ctx, nil); err != nil {
		compensate()
		return err
	}
	compensations = append(compensations, func(c workflow.Context) error {
		return workflow.ExecuteActivity(c, a.RetractNotification, input.ProfileA).Get(c, nil)
	})

	if err := workflow.ExecuteActivity(ctx, a.NotifyProfile, NotifyInput{
		ProfileID:   input.ProfileB,
		Counterpart: pair.NameA,
	}).Get(ctx, nil); err != nil {
		compensate()
		return err
	}

	if err := workflow.ExecuteActivity(ctx, a.MarkNotified, input.MatchID).Get(ctx, nil); err != nil {
		compensate()
		return err
	}

	logger.Info("match notification completed", "match_id", input.MatchID)
	return nil
}
