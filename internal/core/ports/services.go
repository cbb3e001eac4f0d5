package ports

import (
	"context"

	"github.com/flintapp/flint/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishMessage(ctx context.Context, msg *domain.Message) error
	PublishMatch(ctx context.Context, match *domain.Match) error
	PublishLocationPing(ctx context.Context, ping *domain.LocationPing) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeMessages(ctx context.Context, handler func(ctx context.Context, msg *domain.Message) error) error
	SubscribeLocationPings(ctx context.Context, handler func(ctx context.Context, ping *domain.LocationPing) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// NotificationService sends notifications (push, email, etc.).
type NotificationService interface {
	SendPush(ctx context.Context, profileID, title, body string) error
}

// MatchWorkflowStarter kicks off the asynchronous match-notification
// workflow. A nil starter means matches are created without notifications.
type MatchWorkflowStarter interface {
	StartMatchNotification(ctx context.Context, match *domain.Match) error
}
