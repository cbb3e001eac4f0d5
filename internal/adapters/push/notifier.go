package push

import (
	"context"
	"log/slog"
)

// Notifier implements ports.NotificationService.
//
// Delivery to an actual push gateway (APNs/FCM) happens out of process;
// this adapter records the intent so the delivery pipeline can pick it up
// and so local development shows what would have been sent.
type Notifier struct {
	logger *slog.Logger
}

// New creates a Notifier.
func New(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// SendPush records a push notification for delivery.
func (n *Notifier) SendPush(ctx context.Context, profileID, title, body string) error {
	n.logger.InfoContext(ctx, "push notification queued",
		slog.String("profile_id", profileID),
		slog.String("title", title),
		slog.String("body", body),
	)
	return nil
}
