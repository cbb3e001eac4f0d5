package usecases_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/flintapp/flint/internal/core/domain"
	"github.com/flintapp/flint/internal/core/usecases"
)

// --- Mock MessageRepository ---

type mockMessageRepo struct {
	insertFn      func(ctx context.Context, msg *domain.Message) error
	listByMatchFn func(ctx context.Context, matchID string, before time.Time, limit int) ([]domain.Message, error)
	markReadFn    func(ctx context.Context, matchID, readerID string, at time.Time) error
}

func (m *mockMessageRepo) Insert(ctx context.Context, msg *domain.Message) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, msg)
	}
	return nil
}
func (m *mockMessageRepo) ListByMatch(ctx context.Context, matchID string, before time.Time, limit int) ([]domain.Message, error) {
	if m.listByMatchFn != nil {
		return m.listByMatchFn(ctx, matchID, before, limit)
	}
	return nil, nil
}
func (m *mockMessageRepo) MarkRead(ctx context.Context, matchID, readerID string, at time.Time) error {
	if m.markReadFn != nil {
		return m.markReadFn(ctx, matchID, readerID, at)
	}
	return nil
}

func activeMatchRepo() *mockMatchRepo {
	return &mockMatchRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Match, error) {
			return &domain.Match{ID: id, ProfileA: "alice", ProfileB: "bob", MatchedAt: time.Now()}, nil
		},
	}
}

// --- Tests ---

func TestChatService_Send(t *testing.T) {
	var saved *domain.Message
	messages := &mockMessageRepo{
		insertFn: func(ctx context.Context, msg *domain.Message) error {
			saved = msg
			return nil
		},
	}
	pub := &mockPublisher{}

	svc := usecases.NewChatService(activeMatchRepo(), messages, pub)
	msg, err := svc.Send(context.Background(), "m1", "alice", "  hola!  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil {
		t.Fatal("message was not persisted")
	}
	if msg.Body != "hola!" {
		t.Errorf("body must be trimmed, got %q", msg.Body)
	}
	if len(pub.messages) != 1 {
		t.Error("message was not published for real-time delivery")
	}
}

func TestChatService_Send_Rejections(t *testing.T) {
	svc := usecases.NewChatService(activeMatchRepo(), &mockMessageRepo{}, nil)

	if _, err := svc.Send(context.Background(), "m1", "alice", "   "); err == nil {
		t.Error("expected error for empty body")
	}
	if _, err := svc.Send(context.Background(), "m1", "alice", strings.Repeat("x", 2001)); err == nil {
		t.Error("expected error for oversized body")
	}
	if _, err := svc.Send(context.Background(), "m1", "mallory", "hi"); err == nil {
		t.Error("expected error for a non-member sender")
	}
}

func TestChatService_Send_DissolvedMatch(t *testing.T) {
	then := time.Now().Add(-time.Hour)
	matches := &mockMatchRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Match, error) {
			return &domain.Match{ID: id, ProfileA: "alice", ProfileB: "bob", UnmatchedAt: &then}, nil
		},
	}
	svc := usecases.NewChatService(matches, &mockMessageRepo{}, nil)
	if _, err := svc.Send(context.Background(), "m1", "alice", "hi"); err == nil {
		t.Error("expected error for a dissolved match")
	}
}

func TestChatService_History_ClampsLimit(t *testing.T) {
	messages := &mockMessageRepo{
		listByMatchFn: func(ctx context.Context, matchID string, before time.Time, limit int) ([]domain.Message, error) {
			if limit != 50 {
				t.Errorf("expected limit clamped to 50, got %d", limit)
			}
			if before.IsZero() {
				t.Error("before cursor must default to now")
			}
			return nil, nil
		},
	}
	svc := usecases.NewChatService(activeMatchRepo(), messages, nil)
	if _, err := svc.History(context.Background(), "m1", "bob", time.Time{}, 999); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestChatService_MarkRead_NonMember(t *testing.T) {
	svc := usecases.NewChatService(activeMatchRepo(), &mockMessageRepo{}, nil)
	if err := svc.MarkRead(context.Background(), "m1", "mallory"); err == nil {
		t.Error("expected error for a non-member reader")
	}
}
