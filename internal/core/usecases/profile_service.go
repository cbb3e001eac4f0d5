package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flintapp/flint/internal/core/domain"
	"github.com/flintapp/flint/internal/core/ports"
	"github.com/flintapp/flint/internal/pkg/proximity"
)

// ProfileService handles profile-related business logic.
type ProfileService struct {
	profiles  ports.ProfileRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profiles ports.ProfileRepository, cache ports.CacheService, publisher ports.EventPublisher) *ProfileService {
	return &ProfileService{profiles: profiles, cache: cache, publisher: publisher}
}

// Get returns a single profile.
func (s *ProfileService) Get(ctx context.Context, id string) (*domain.Profile, error) {
	cacheKey := "profiles:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var p domain.Profile
			if err := json.Unmarshal(data, &p); err == nil {
				return &p, nil
			}
		}
	}

	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(p); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return p, nil
}

// Upsert creates or updates a profile.
func (s *ProfileService) Upsert(ctx context.Context, p *domain.Profile) error {
	if p.Handle == "" {
		return fmt.Errorf("profile handle must not be empty")
	}
	if p.DisplayName == "" {
		return fmt.Errorf("profile display name must not be empty")
	}
	if p.BirthDate.IsZero() {
		return fmt.Errorf("profile birth date is required")
	}
	if age := p.Age(time.Now()); age < 18 {
		return fmt.Errorf("profile must be at least 18, got %d", age)
	}

	if err := s.profiles.Upsert(ctx, p); err != nil {
		return err
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, "profiles:id:"+p.ID)
	}
	return nil
}

// UpdateLocation persists a client-reported position and fans it out on
// the broker for presence-aware consumers.
func (s *ProfileService) UpdateLocation(ctx context.Context, id string, loc domain.GeoPoint) error {
	if !(proximity.Coordinate{Lat: loc.Lat, Lon: loc.Lon}).Valid() {
		return fmt.Errorf("invalid location %.4f, %.4f", loc.Lat, loc.Lon)
	}

	now := time.Now()
	if err := s.profiles.UpdateLocation(ctx, id, loc, now); err != nil {
		return fmt.Errorf("update location: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, "profiles:id:"+id)
	}

	if s.publisher != nil {
		ping := &domain.LocationPing{ProfileID: id, Location: loc, Time: now}
		_ = s.publisher.PublishLocationPing(ctx, ping)
	}
	return nil
}

// Deactivate hides a profile from discovery.
func (s *ProfileService) Deactivate(ctx context.Context, id string) error {
	if err := s.profiles.Deactivate(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "profiles:id:"+id)
	}
	return nil
}
