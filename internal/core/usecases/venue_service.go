package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/flintapp/flint/internal/core/domain"
	"github.com/flintapp/flint/internal/core/ports"
	"github.com/flintapp/flint/internal/pkg/proximity"
)

// candidateFetchLimit caps how many in-bounds rows are pulled from
// storage before exact distance ranking.
const candidateFetchLimit = 500

// VenueService handles venue discovery.
type VenueService struct {
	venues ports.VenueRepository
	cache  ports.CacheService

	// sampleFallback serves the built-in sample set when the store is
	// unreachable. Off by default; see config discovery.sample_fallback.
	sampleFallback bool
}

// NewVenueService creates a new VenueService.
func NewVenueService(venues ports.VenueRepository, cache ports.CacheService, sampleFallback bool) *VenueService {
	return &VenueService{venues: venues, cache: cache, sampleFallback: sampleFallback}
}

// Nearby returns venues within radiusKm of the observer, closest first,
// optionally restricted to a category. Storage supplies a bounding-box
// candidate set; exact filtering and ranking happen in proximity.Search
// so every caller gets identical distance semantics.
func (s *VenueService) Nearby(ctx context.Context, lat, lon, radiusKm float64, category string, limit int) ([]domain.Venue, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	cacheKey := fmt.Sprintf("venues:nearby:%.4f:%.4f:%.1f:%s:%d", lat, lon, radiusKm, category, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var venues []domain.Venue
			if err := json.Unmarshal(data, &venues); err == nil {
				return venues, nil
			}
		}
	}

	observer := proximity.Coordinate{Lat: lat, Lon: lon}
	query := proximity.Query{Observer: observer, RadiusKm: radiusKm, Limit: limit}
	if category != "" {
		query.Predicates = append(query.Predicates, func(e proximity.Entity) bool {
			return e.Attrs["category"] == category
		})
	}

	// Validate the query before touching storage so an invalid observer
	// or radius never reads as an empty area.
	if _, err := proximity.Search(query, nil); err != nil {
		return nil, err
	}

	minLat, minLon, maxLat, maxLon := proximity.BoundingBox(observer, radiusKm)
	candidates, err := s.venues.ListInBounds(ctx, minLat, minLon, maxLat, maxLon, candidateFetchLimit)
	if err != nil {
		if s.sampleFallback {
			slog.Warn("venue store unavailable, serving sample data", "error", err)
			candidates = sampleVenues()
		} else {
			return nil, fmt.Errorf("list venues in bounds: %w", err)
		}
	}

	venues := rankVenues(query, candidates)

	if s.cache != nil {
		if data, err := json.Marshal(venues); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return venues, nil
}

// rankVenues runs the proximity search over a candidate set and
// annotates the survivors with their computed distance.
func rankVenues(query proximity.Query, candidates []domain.Venue) []domain.Venue {
	entities := make([]proximity.Entity, 0, len(candidates))
	for i := range candidates {
		v := &candidates[i]
		e := proximity.Entity{
			ID:    v.ID,
			Attrs: map[string]any{"category": v.Category, "venue": v},
		}
		if v.Location != nil {
			e.Coord = &proximity.Coordinate{Lat: v.Location.Lat, Lon: v.Location.Lon}
		}
		entities = append(entities, e)
	}

	res, err := proximity.Search(query, entities)
	if err != nil {
		// The query was validated upstream; nothing to rank.
		return nil
	}
	if res.Excluded > 0 {
		slog.Debug("venues excluded for bad coordinates", "count", res.Excluded)
	}

	venues := make([]domain.Venue, 0, len(res.Hits))
	for _, h := range res.Hits {
		v := *h.Entity.Attrs["venue"].(*domain.Venue)
		d := h.DistanceKm
		v.DistanceKm = &d
		venues = append(venues, v)
	}
	return venues
}

// Search performs text search on venue names.
func (s *VenueService) Search(ctx context.Context, query string, limit int) ([]domain.Venue, error) {
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("venues:search:%s:%d", query, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var venues []domain.Venue
			if err := json.Unmarshal(data, &venues); err == nil {
				return venues, nil
			}
		}
	}

	venues, err := s.venues.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(venues); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return venues, nil
}

// GetByID returns a single venue.
func (s *VenueService) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	cacheKey := "venues:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var v domain.Venue
			if err := json.Unmarshal(data, &v); err == nil {
				return &v, nil
			}
		}
	}

	v, err := s.venues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(v); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return v, nil
}
