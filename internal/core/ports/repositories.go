package ports

import (
	"context"
	"time"

	"github.com/flintapp/flint/internal/core/domain"
)

// ProfileRepository persists user profiles.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Profile, error)
	// ListActiveInBounds returns active profiles whose last known location
	// falls inside the lat/lon box. Callers rank and filter the result.
	ListActiveInBounds(ctx context.Context, minLat, minLon, maxLat, maxLon float64, limit int) ([]domain.Profile, error)
	UpdateLocation(ctx context.Context, id string, loc domain.GeoPoint, seenAt time.Time) error
	Deactivate(ctx context.Context, id string) error
}

// VenueRepository persists venues.
type VenueRepository interface {
	Upsert(ctx context.Context, venue *domain.Venue) error
	UpsertBatch(ctx context.Context, venues []domain.Venue) error
	GetByID(ctx context.Context, id string) (*domain.Venue, error)
	// ListInBounds returns venues inside the lat/lon box, unranked.
	ListInBounds(ctx context.Context, minLat, minLon, maxLat, maxLon float64, limit int) ([]domain.Venue, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Venue, error)
}

// SwipeRepository persists swipe decisions.
type SwipeRepository interface {
	Insert(ctx context.Context, swipe *domain.Swipe) error
	// HasLike reports whether swiper has an existing like on target.
	HasLike(ctx context.Context, swiperID, targetID string) (bool, error)
	// SwipedTargetIDs returns the IDs the swiper has already decided on.
	SwipedTargetIDs(ctx context.Context, swiperID string) ([]string, error)
}

// MatchRepository persists matches.
type MatchRepository interface {
	Create(ctx context.Context, match *domain.Match) error
	GetByID(ctx context.Context, id string) (*domain.Match, error)
	ListByProfile(ctx context.Context, profileID string) ([]domain.Match, error)
	Unmatch(ctx context.Context, id string) error
	MarkNotified(ctx context.Context, id string, notified bool) error
}

// MessageRepository persists chat messages.
type MessageRepository interface {
	Insert(ctx context.Context, msg *domain.Message) error
	// ListByMatch returns messages sent before the cursor, newest first.
	ListByMatch(ctx context.Context, matchID string, before time.Time, limit int) ([]domain.Message, error)
	MarkRead(ctx context.Context, matchID, readerID string, at time.Time) error
}
