package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/flintapp/flint/internal/core/usecases"
	"github.com/flintapp/flint/internal/pkg/proximity"
)

// Stats holds row counts from the core tables.
type Stats struct {
	Profiles int    `json:"profiles"`
	Venues   int    `json:"venues"`
	Swipes   int    `json:"swipes"`
	Matches  int    `json:"matches"`
	Messages int    `json:"messages"`
	LastPing string `json:"last_ping,omitempty"`
}

// StatsHandler returns row counts from the core tables.
func StatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats Stats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM profiles),
				(SELECT count(*) FROM venues),
				(SELECT count(*) FROM swipes),
				(SELECT count(*) FROM matches),
				(SELECT count(*) FROM messages),
				COALESCE((SELECT max(last_seen)::text FROM profiles), '')
		`)
		if err := row.Scan(&stats.Profiles, &stats.Venues, &stats.Swipes,
			&stats.Matches, &stats.Messages, &stats.LastPing); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// NearbyVenuesHandler returns venues within a radius of a point.
func NearbyVenuesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radiusKm := c.QueryFloat("radius_km", 5)
		if deps.MaxRadiusKm > 0 && radiusKm > deps.MaxRadiusKm {
			radiusKm = deps.MaxRadiusKm
		}
		category := c.Query("category")
		limit := c.QueryInt("limit", 50)
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		venues, err := deps.Venues.Nearby(c.Context(), lat, lon, radiusKm, category, limit)
		if err != nil {
			if errors.Is(err, proximity.ErrInvalidCoordinate) || errors.Is(err, proximity.ErrInvalidRadius) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(venues)
	}
}

// SearchVenuesHandler performs fuzzy search on venue names.
func SearchVenuesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		limit := c.QueryInt("limit", 20)
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		venues, err := deps.Venues.Search(c.Context(), query, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		return c.JSON(venues)
	}
}

// GetVenueHandler returns a single venue by ID.
func GetVenueHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "venue id is required")
		}
		venue, err := deps.Venues.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "venue not found")
		}
		return c.JSON(venue)
	}
}

// DiscoveryHandler returns candidate profiles near the caller, closest
// first, filtered by mutual interest and the caller's preferences.
func DiscoveryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		viewer, err := deps.Profiles.Get(c.Context(), callerID(c))
		if err != nil {
			return errNotFound(c, "profile not found")
		}

		radiusKm := c.QueryFloat("radius_km", deps.DefaultRadiusKm)
		if deps.MaxRadiusKm > 0 && radiusKm > deps.MaxRadiusKm {
			radiusKm = deps.MaxRadiusKm
		}
		filter := usecases.DiscoveryFilter{
			RadiusKm: radiusKm,
			MinAge:   c.QueryInt("min_age", 0),
			MaxAge:   c.QueryInt("max_age", 0),
			Limit:    c.QueryInt("limit", 0),
		}

		candidates, err := deps.Discovery.NearbyProfiles(c.Context(), viewer, filter)
		if err != nil {
			if errors.Is(err, proximity.ErrInvalidCoordinate) ||
				errors.Is(err, proximity.ErrInvalidRadius) ||
				errors.Is(err, usecases.ErrNoViewerLocation) {
				return errBadRequest(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		// Discovery results are personal and short-lived
		c.Set("Cache-Control", "private, max-age=0")
		return c.JSON(candidates)
	}
}
