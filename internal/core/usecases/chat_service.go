package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flintapp/flint/internal/core/domain"
	"github.com/flintapp/flint/internal/core/ports"
)

const maxMessageLength = 2000

// ChatService handles messaging between matched profiles. Delivery to
// connected clients happens over the broker; persistence is the source
// of truth for history.
type ChatService struct {
	matches   ports.MatchRepository
	messages  ports.MessageRepository
	publisher ports.EventPublisher
}

// NewChatService creates a new ChatService.
func NewChatService(matches ports.MatchRepository, messages ports.MessageRepository, publisher ports.EventPublisher) *ChatService {
	return &ChatService{matches: matches, messages: messages, publisher: publisher}
}

// Send persists a message and publishes it for real-time delivery.
func (s *ChatService) Send(ctx context.Context, matchID, senderID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("message body must not be empty")
	}
	if len(body) > maxMessageLength {
		return nil, fmt.Errorf("message too long: %d > %d", len(body), maxMessageLength)
	}

	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("load match: %w", err)
	}
	if !match.Involves(senderID) {
		return nil, fmt.Errorf("profile %s is not part of match %s", senderID, matchID)
	}
	if match.UnmatchedAt != nil {
		return nil, fmt.Errorf("match %s is dissolved", matchID)
	}

	msg := &domain.Message{
		ID:       uuid.NewString(),
		MatchID:  matchID,
		SenderID: senderID,
		Body:     body,
		SentAt:   time.Now(),
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	// Best-effort: a broker outage must not lose the message, only its
	// instant delivery.
	if s.publisher != nil {
		_ = s.publisher.PublishMessage(ctx, msg)
	}

	return msg, nil
}

// History returns messages in a match, newest first, before the cursor.
func (s *ChatService) History(ctx context.Context, matchID, requesterID string, before time.Time, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if before.IsZero() {
		before = time.Now()
	}

	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("load match: %w", err)
	}
	if !match.Involves(requesterID) {
		return nil, fmt.Errorf("profile %s is not part of match %s", requesterID, matchID)
	}

	return s.messages.ListByMatch(ctx, matchID, before, limit)
}

// MarkRead marks the counterpart's messages as read.
func (s *ChatService) MarkRead(ctx context.Context, matchID, readerID string) error {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return fmt.Errorf("load match: %w", err)
	}
	if !match.Involves(readerID) {
		return fmt.Errorf("profile %s is not part of match %s", readerID, matchID)
	}
	return s.messages.MarkRead(ctx, matchID, readerID, time.Now())
}
