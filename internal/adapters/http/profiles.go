package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/flintapp/flint/internal/core/domain"
)

// profileRequest is the writable subset of a profile.
type profileRequest struct {
	Handle       string         `json:"handle"`
	DisplayName  string         `json:"display_name"`
	Bio          string         `json:"bio"`
	BirthDate    string         `json:"birth_date"` // YYYY-MM-DD
	Gender       string         `json:"gender"`
	InterestedIn []string       `json:"interested_in"`
	PhotoURLs    []string       `json:"photo_urls"`
	Metadata     map[string]any `json:"metadata"`
}

// GetOwnProfileHandler returns the caller's own profile.
func GetOwnProfileHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, err := deps.Profiles.Get(c.Context(), callerID(c))
		if err != nil {
			return errNotFound(c, "profile not found")
		}
		c.Set("Cache-Control", "private, max-age=0")
		return c.JSON(profile)
	}
}

// GetProfileHandler returns another member's profile by ID.
func GetProfileHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "profile id is required")
		}
		profile, err := deps.Profiles.Get(c.Context(), id)
		if err != nil {
			return errNotFound(c, "profile not found")
		}
		if !profile.Active {
			return errNotFound(c, "profile not found")
		}
		return c.JSON(profile)
	}
}

// UpsertProfileHandler creates or updates the caller's profile.
func UpsertProfileHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req profileRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		birthDate, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return errBadRequest(c, "birth_date must be YYYY-MM-DD")
		}

		profile := &domain.Profile{
			ID:           callerID(c),
			Handle:       req.Handle,
			DisplayName:  req.DisplayName,
			Bio:          req.Bio,
			BirthDate:    birthDate,
			Gender:       req.Gender,
			InterestedIn: req.InterestedIn,
			PhotoURLs:    req.PhotoURLs,
			Metadata:     req.Metadata,
			Active:       true,
		}
		if err := deps.Profiles.Upsert(c.Context(), profile); err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.Status(fiber.StatusOK).JSON(profile)
	}
}

// UpdateLocationHandler records the caller's current position.
func UpdateLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var loc domain.GeoPoint
		if err := c.BodyParser(&loc); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Profiles.UpdateLocation(c.Context(), callerID(c), loc); err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DeactivateProfileHandler hides the caller from discovery.
func DeactivateProfileHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Profiles.Deactivate(c.Context(), callerID(c)); err != nil {
			return errInternal(c, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
