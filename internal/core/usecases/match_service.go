package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flintapp/flint/internal/core/domain"
	"github.com/flintapp/flint/internal/core/ports"
)

// MatchService handles the swipe flow and resulting matches.
type MatchService struct {
	swipes    ports.SwipeRepository
	matches   ports.MatchRepository
	publisher ports.EventPublisher
	workflows ports.MatchWorkflowStarter
}

// NewMatchService creates a new MatchService.
func NewMatchService(
	swipes ports.SwipeRepository,
	matches ports.MatchRepository,
	publisher ports.EventPublisher,
	workflows ports.MatchWorkflowStarter,
) *MatchService {
	return &MatchService{swipes: swipes, matches: matches, publisher: publisher, workflows: workflows}
}

// RecordSwipe stores a like/pass decision. A like that is already
// reciprocated creates a match, which is returned; otherwise the match
// is nil.
func (s *MatchService) RecordSwipe(ctx context.Context, swiperID, targetID, direction string) (*domain.Match, error) {
	if direction != domain.SwipeLike && direction != domain.SwipePass {
		return nil, fmt.Errorf("unknown swipe direction %q", direction)
	}
	if swiperID == targetID {
		return nil, fmt.Errorf("cannot swipe on yourself")
	}

	swipe := &domain.Swipe{
		ID:        uuid.NewString(),
		SwiperID:  swiperID,
		TargetID:  targetID,
		Direction: direction,
		CreatedAt: time.Now(),
	}
	if err := s.swipes.Insert(ctx, swipe); err != nil {
		return nil, fmt.Errorf("insert swipe: %w", err)
	}

	if direction != domain.SwipeLike {
		return nil, nil
	}

	reciprocated, err := s.swipes.HasLike(ctx, targetID, swiperID)
	if err != nil {
		return nil, fmt.Errorf("check reciprocal like: %w", err)
	}
	if !reciprocated {
		return nil, nil
	}

	// Normalize the pair so (a,b) and (b,a) produce the same row and the
	// unique constraint on (profile_a, profile_b) catches repeats.
	a, b := swiperID, targetID
	if b < a {
		a, b = b, a
	}
	match := &domain.Match{
		ID:        uuid.NewString(),
		ProfileA:  a,
		ProfileB:  b,
		MatchedAt: time.Now(),
	}
	if err := s.matches.Create(ctx, match); err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}

	if s.publisher != nil {
		_ = s.publisher.PublishMatch(ctx, match)
	}
	if s.workflows != nil {
		if err := s.workflows.StartMatchNotification(ctx, match); err != nil {
			slog.Warn("match notification workflow not started", "match", match.ID, "error", err)
		}
	}

	return match, nil
}

// ListMatches returns the active matches for a profile.
func (s *MatchService) ListMatches(ctx context.Context, profileID string) ([]domain.Match, error) {
	return s.matches.ListByProfile(ctx, profileID)
}

// Get returns a match if the requester is one of its two sides.
func (s *MatchService) Get(ctx context.Context, matchID, requesterID string) (*domain.Match, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Involves(requesterID) {
		return nil, fmt.Errorf("profile %s is not part of match %s", requesterID, matchID)
	}
	return match, nil
}

// Unmatch dissolves a match on behalf of one of its members.
func (s *MatchService) Unmatch(ctx context.Context, matchID, requesterID string) error {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return err
	}
	if !match.Involves(requesterID) {
		return fmt.Errorf("profile %s is not part of match %s", requesterID, matchID)
	}
	return s.matches.Unmatch(ctx, matchID)
}
