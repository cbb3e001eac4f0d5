package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/flintapp/flint/internal/core/domain"
	"github.com/flintapp/flint/internal/core/usecases"
)

// --- Mock MatchRepository ---

type mockMatchRepo struct {
	createFn        func(ctx context.Context, m *domain.Match) error
	getByIDFn       func(ctx context.Context, id string) (*domain.Match, error)
	listByProfileFn func(ctx context.Context, profileID string) ([]domain.Match, error)
	unmatchFn       func(ctx context.Context, id string) error
}

func (m *mockMatchRepo) Create(ctx context.Context, match *domain.Match) error {
	if m.createFn != nil {
		return m.createFn(ctx, match)
	}
	return nil
}
func (m *mockMatchRepo) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockMatchRepo) ListByProfile(ctx context.Context, profileID string) ([]domain.Match, error) {
	if m.listByProfileFn != nil {
		return m.listByProfileFn(ctx, profileID)
	}
	return nil, nil
}
func (m *mockMatchRepo) Unmatch(ctx context.Context, id string) error {
	if m.unmatchFn != nil {
		return m.unmatchFn(ctx, id)
	}
	return nil
}
func (m *mockMatchRepo) MarkNotified(ctx context.Context, id string, notified bool) error {
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	messages []*domain.Message
	matches  []*domain.Match
	pings    []*domain.LocationPing
}

func (m *mockPublisher) PublishMessage(ctx context.Context, msg *domain.Message) error {
	m.messages = append(m.messages, msg)
	return nil
}
func (m *mockPublisher) PublishMatch(ctx context.Context, match *domain.Match) error {
	m.matches = append(m.matches, match)
	return nil
}
func (m *mockPublisher) PublishLocationPing(ctx context.Context, ping *domain.LocationPing) error {
	m.pings = append(m.pings, ping)
	return nil
}

// --- Tests ---

func TestMatchService_RecordSwipe_Pass(t *testing.T) {
	inserted := false
	swipes := &mockSwipeRepo{
		insertFn: func(ctx context.Context, s *domain.Swipe) error {
			inserted = true
			if s.Direction != domain.SwipePass {
				t.Errorf("expected pass, got %s", s.Direction)
			}
			return nil
		},
	}

	svc := usecases.NewMatchService(swipes, &mockMatchRepo{}, nil, nil)
	match, err := svc.RecordSwipe(context.Background(), "alice", "bob", domain.SwipePass)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match != nil {
		t.Error("a pass must never create a match")
	}
	if !inserted {
		t.Error("swipe was not persisted")
	}
}

func TestMatchService_RecordSwipe_LikeWithoutReciprocal(t *testing.T) {
	swipes := &mockSwipeRepo{
		hasLikeFn: func(ctx context.Context, swiperID, targetID string) (bool, error) {
			return false, nil
		},
	}
	created := false
	matches := &mockMatchRepo{
		createFn: func(ctx context.Context, m *domain.Match) error {
			created = true
			return nil
		},
	}

	svc := usecases.NewMatchService(swipes, matches, nil, nil)
	match, err := svc.RecordSwipe(context.Background(), "alice", "bob", domain.SwipeLike)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match != nil || created {
		t.Error("unreciprocated like must not create a match")
	}
}

func TestMatchService_RecordSwipe_MutualLikeCreatesMatch(t *testing.T) {
	swipes := &mockSwipeRepo{
		hasLikeFn: func(ctx context.Context, swiperID, targetID string) (bool, error) {
			if swiperID != "alice" || targetID != "zoe" {
				t.Errorf("reciprocal check must look up target's like: %s -> %s", swiperID, targetID)
			}
			return true, nil
		},
	}
	matches := &mockMatchRepo{}
	pub := &mockPublisher{}

	svc := usecases.NewMatchService(swipes, matches, pub, nil)
	match, err := svc.RecordSwipe(context.Background(), "zoe", "alice", domain.SwipeLike)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match == nil {
		t.Fatal("mutual like must create a match")
	}
	if match.ProfileA != "alice" || match.ProfileB != "zoe" {
		t.Errorf("pair must be normalized, got (%s, %s)", match.ProfileA, match.ProfileB)
	}
	if len(pub.matches) != 1 {
		t.Error("match event was not published")
	}
}

func TestMatchService_RecordSwipe_Invalid(t *testing.T) {
	svc := usecases.NewMatchService(&mockSwipeRepo{}, &mockMatchRepo{}, nil, nil)

	if _, err := svc.RecordSwipe(context.Background(), "alice", "alice", domain.SwipeLike); err == nil {
		t.Error("expected error for self-swipe")
	}
	if _, err := svc.RecordSwipe(context.Background(), "alice", "bob", "superlike"); err == nil {
		t.Error("expected error for unknown direction")
	}
}

func TestMatchService_Unmatch_NonMember(t *testing.T) {
	matches := &mockMatchRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Match, error) {
			return &domain.Match{ID: id, ProfileA: "alice", ProfileB: "bob", MatchedAt: time.Now()}, nil
		},
	}
	svc := usecases.NewMatchService(&mockSwipeRepo{}, matches, nil, nil)
	if err := svc.Unmatch(context.Background(), "m1", "mallory"); err == nil {
		t.Error("expected error for a non-member unmatch")
	}
}
