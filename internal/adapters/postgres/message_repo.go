package postgres

import (
	"context"
	"time"

	"github.com/flintapp/flint/internal/core/domain"
)

// MessageRepo implements ports.MessageRepository with pgx.
type MessageRepo struct {
	db *DB
}

// NewMessageRepo creates a new MessageRepo.
func NewMessageRepo(db *DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Insert stores a chat message.
func (r *MessageRepo) Insert(ctx context.Context, m *domain.Message) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO messages (id, match_id, sender_id, body, sent_at)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ID, m.MatchID, m.SenderID, m.Body, m.SentAt)
	return err
}

// ListByMatch returns messages sent before the cursor, newest first.
func (r *MessageRepo) ListByMatch(ctx context.Context, matchID string, before time.Time, limit int) ([]domain.Message, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, match_id, sender_id, body, sent_at, read_at
		FROM messages
		WHERE match_id = $1 AND sent_at < $2
		ORDER BY sent_at DESC
		LIMIT $3
	`, matchID, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.MatchID, &m.SenderID, &m.Body, &m.SentAt, &m.ReadAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkRead stamps the counterpart's unread messages in a match.
func (r *MessageRepo) MarkRead(ctx context.Context, matchID, readerID string, at time.Time) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE messages SET read_at = $3
		WHERE match_id = $1 AND sender_id <> $2 AND read_at IS NULL
	`, matchID, readerID, at)
	return err
}
