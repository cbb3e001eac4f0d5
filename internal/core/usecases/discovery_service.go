package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flintapp/flint/internal/core/domain"
	"github.com/flintapp/flint/internal/core/ports"
	"github.com/flintapp/flint/internal/pkg/proximity"
)

// ErrNoViewerLocation marks discovery requests from a profile that has
// never reported a position. A caller-side problem, not a server fault.
var ErrNoViewerLocation = errors.New("viewer has no known location")

// DiscoveryFilter narrows the profile discovery feed.
type DiscoveryFilter struct {
	RadiusKm float64
	MinAge   int
	MaxAge   int
	Limit    int
}

// DiscoveryService builds the swipe feed: active profiles near the
// viewer, filtered by mutual orientation, age range, and swipe history.
type DiscoveryService struct {
	profiles ports.ProfileRepository
	swipes   ports.SwipeRepository

	sampleFallback bool
}

// NewDiscoveryService creates a new DiscoveryService.
func NewDiscoveryService(profiles ports.ProfileRepository, swipes ports.SwipeRepository, sampleFallback bool) *DiscoveryService {
	return &DiscoveryService{profiles: profiles, swipes: swipes, sampleFallback: sampleFallback}
}

// NearbyProfiles returns discovery candidates for the viewer, closest
// first. The viewer must have a known location.
func (s *DiscoveryService) NearbyProfiles(ctx context.Context, viewer *domain.Profile, filter DiscoveryFilter) ([]domain.Profile, error) {
	if viewer.Location == nil {
		return nil, fmt.Errorf("profile %s: %w", viewer.ID, ErrNoViewerLocation)
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 25
	}

	swiped, err := s.swipes.SwipedTargetIDs(ctx, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("load swipe history: %w", err)
	}
	swipedSet := make(map[string]struct{}, len(swiped))
	for _, id := range swiped {
		swipedSet[id] = struct{}{}
	}

	observer := proximity.Coordinate{Lat: viewer.Location.Lat, Lon: viewer.Location.Lon}
	now := time.Now()
	query := proximity.Query{
		Observer: observer,
		RadiusKm: filter.RadiusKm,
		Limit:    filter.Limit,
		Predicates: []proximity.Predicate{
			// The index treats a distance-0 self hit like any other
			// entity, so self-exclusion is our predicate.
			func(e proximity.Entity) bool { return e.ID != viewer.ID },
			func(e proximity.Entity) bool {
				_, seen := swipedSet[e.ID]
				return !seen
			},
			func(e proximity.Entity) bool {
				p := e.Attrs["profile"].(*domain.Profile)
				return mutuallyInterested(viewer, p)
			},
			func(e proximity.Entity) bool {
				age := e.Attrs["profile"].(*domain.Profile).Age(now)
				if filter.MinAge > 0 && age < filter.MinAge {
					return false
				}
				if filter.MaxAge > 0 && age > filter.MaxAge {
					return false
				}
				return true
			},
		},
	}

	if _, err := proximity.Search(query, nil); err != nil {
		return nil, err
	}

	minLat, minLon, maxLat, maxLon := proximity.BoundingBox(observer, filter.RadiusKm)
	candidates, err := s.profiles.ListActiveInBounds(ctx, minLat, minLon, maxLat, maxLon, candidateFetchLimit)
	if err != nil {
		if s.sampleFallback {
			slog.Warn("profile store unavailable, serving sample data", "error", err)
			candidates = sampleProfiles()
		} else {
			return nil, fmt.Errorf("list profiles in bounds: %w", err)
		}
	}

	entities := make([]proximity.Entity, 0, len(candidates))
	for i := range candidates {
		p := &candidates[i]
		e := proximity.Entity{ID: p.ID, Attrs: map[string]any{"profile": p}}
		if p.Location != nil {
			e.Coord = &proximity.Coordinate{Lat: p.Location.Lat, Lon: p.Location.Lon}
		}
		entities = append(entities, e)
	}

	res, err := proximity.Search(query, entities)
	if err != nil {
		return nil, err
	}
	if res.Excluded > 0 {
		slog.Debug("profiles excluded for bad coordinates", "count", res.Excluded, "viewer", viewer.ID)
	}

	feed := make([]domain.Profile, 0, len(res.Hits))
	for _, h := range res.Hits {
		p := *h.Entity.Attrs["profile"].(*domain.Profile)
		d := h.DistanceKm
		p.DistanceKm = &d
		feed = append(feed, p)
	}
	return feed, nil
}

// mutuallyInterested reports whether both sides' orientation settings
// admit the other.
func mutuallyInterested(a, b *domain.Profile) bool {
	return admitsGender(a.InterestedIn, b.Gender) && admitsGender(b.InterestedIn, a.Gender)
}

func admitsGender(interestedIn []string, gender string) bool {
	for _, g := range interestedIn {
		if g == gender || g == "everyone" {
			return true
		}
	}
	return false
}
