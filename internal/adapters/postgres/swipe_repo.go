package postgres

import (
	"context"

	"github.com/flintapp/flint/internal/core/domain"
)

// SwipeRepo implements ports.SwipeRepository with pgx.
type SwipeRepo struct {
	db *DB
}

// NewSwipeRepo creates a new SwipeRepo.
func NewSwipeRepo(db *DB) *SwipeRepo {
	return &SwipeRepo{db: db}
}

// Insert stores a swipe. A repeated decision on the same target
// overwrites the previous one.
func (r *SwipeRepo) Insert(ctx context.Context, s *domain.Swipe) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO swipes (id, swiper_id, target_id, direction, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (swiper_id, target_id) DO UPDATE
		SET direction = EXCLUDED.direction, created_at = EXCLUDED.created_at
	`, s.ID, s.SwiperID, s.TargetID, s.Direction, s.CreatedAt)
	return err
}

// HasLike reports whether swiper has an existing like on target.
func (r *SwipeRepo) HasLike(ctx context.Context, swiperID, targetID string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM swipes
			WHERE swiper_id = $1 AND target_id = $2 AND direction = 'like'
		)
	`, swiperID, targetID).Scan(&exists)
	return exists, err
}

// SwipedTargetIDs returns the IDs the swiper has already decided on.
func (r *SwipeRepo) SwipedTargetIDs(ctx context.Context, swiperID string) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT target_id FROM swipes WHERE swiper_id = $1`, swiperID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
