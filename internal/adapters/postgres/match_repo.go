package postgres

import (
	"context"

	"github.com/flintapp/flint/internal/core/domain"
)

// MatchRepo implements ports.MatchRepository with pgx.
type MatchRepo struct {
	db *DB
}

// NewMatchRepo creates a new MatchRepo.
func NewMatchRepo(db *DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// Create stores a match. The caller normalizes the pair order, so the
// unique index on (profile_a, profile_b) rejects duplicates.
func (r *MatchRepo) Create(ctx context.Context, m *domain.Match) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO matches (id, profile_a, profile_b, matched_at, notified)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (profile_a, profile_b) DO NOTHING
	`, m.ID, m.ProfileA, m.ProfileB, m.MatchedAt, m.Notified)
	return err
}

// GetByID returns a match by UUID.
func (r *MatchRepo) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	var m domain.Match
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, profile_a, profile_b, matched_at, unmatched_at, notified
		FROM matches WHERE id = $1
	`, id).Scan(&m.ID, &m.ProfileA, &m.ProfileB, &m.MatchedAt, &m.UnmatchedAt, &m.Notified)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByProfile returns the active matches for a profile, newest first.
func (r *MatchRepo) ListByProfile(ctx context.Context, profileID string) ([]domain.Match, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, profile_a, profile_b, matched_at, unmatched_at, notified
		FROM matches
		WHERE (profile_a = $1 OR profile_b = $1) AND unmatched_at IS NULL
		ORDER BY matched_at DESC
	`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var m domain.Match
		if err := rows.Scan(&m.ID, &m.ProfileA, &m.ProfileB, &m.MatchedAt, &m.UnmatchedAt, &m.Notified); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Unmatch dissolves a match. Unmatching twice is a no-op.
func (r *MatchRepo) Unmatch(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE matches SET unmatched_at = now() WHERE id = $1 AND unmatched_at IS NULL
	`, id)
	return err
}

// MarkNotified records whether both members were notified of the match.
func (r *MatchRepo) MarkNotified(ctx context.Context, id string, notified bool) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE matches SET notified = $2 WHERE id = $1`, id, notified)
	return err
}
