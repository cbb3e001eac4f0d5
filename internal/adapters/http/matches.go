package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/flintapp/flint/internal/pkg/metrics"
)

// swipeRequest records one like/pass decision.
type swipeRequest struct {
	TargetID  string `json:"target_id"`
	Direction string `json:"direction"` // like | pass
}

// SwipeHandler records a swipe. If it completes a mutual like, the new
// match is returned alongside.
func SwipeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req swipeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.TargetID == "" {
			return errBadRequest(c, "target_id is required")
		}

		match, err := deps.Matches.RecordSwipe(c.Context(), callerID(c), req.TargetID, req.Direction)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		metrics.SwipesTotal.WithLabelValues(req.Direction).Inc()

		resp := fiber.Map{"matched": match != nil}
		if match != nil {
			metrics.MatchesTotal.Inc()
			resp["match"] = match
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// ListMatchesHandler returns the caller's active matches, newest first.
func ListMatchesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		matches, err := deps.Matches.ListMatches(c.Context(), callerID(c))
		if err != nil {
			return errInternal(c, err.Error())
		}

		// Apply offset/limit pagination on the full list
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(matches)
		if offset >= total {
			matches = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			matches = matches[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		c.Set("Cache-Control", "private, max-age=0")
		return c.JSON(PaginatedResponse{Data: matches, Pagination: pg})
	}
}

// GetMatchHandler returns a single match the caller belongs to.
func GetMatchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "match id is required")
		}
		match, err := deps.Matches.Get(c.Context(), id, callerID(c))
		if err != nil {
			return errNotFound(c, "match not found")
		}
		return c.JSON(match)
	}
}

// UnmatchHandler dissolves a match.
func UnmatchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "match id is required")
		}
		if err := deps.Matches.Unmatch(c.Context(), id, callerID(c)); err != nil {
			return errForbidden(c, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListMessagesHandler returns chat history for a match, newest first.
// Pass before=<RFC3339> to page backwards.
func ListMessagesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "match id is required")
		}

		before := time.Time{}
		if raw := c.Query("before"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return errBadRequest(c, "before must be RFC 3339")
			}
			before = t
		}
		limit := c.QueryInt("limit", 50)

		messages, err := deps.Chat.History(c.Context(), id, callerID(c), before, limit)
		if err != nil {
			return errForbidden(c, err.Error())
		}
		c.Set("Cache-Control", "private, max-age=0")
		return c.JSON(messages)
	}
}

// messageRequest carries an outgoing chat message.
type messageRequest struct {
	Body string `json:"body"`
}

// SendMessageHandler persists and fans out a chat message.
func SendMessageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "match id is required")
		}
		var req messageRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		msg, err := deps.Chat.Send(c.Context(), id, callerID(c), req.Body)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		metrics.MessagesTotal.Inc()
		return c.Status(fiber.StatusCreated).JSON(msg)
	}
}

// MarkReadHandler stamps the counterpart's messages as read.
func MarkReadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "match id is required")
		}
		if err := deps.Chat.MarkRead(c.Context(), id, callerID(c)); err != nil {
			return errForbidden(c, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
