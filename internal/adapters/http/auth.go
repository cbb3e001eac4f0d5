package http

import (
	"fmt"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
)

const profileIDLocal = "profile_id"

// AuthMiddleware verifies the Bearer token and stores the caller's profile
// ID in locals. Tokens are issued by the external identity provider and
// signed with HS256; the "sub" claim carries the profile ID.
func AuthMiddleware(signingKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return errUnauthorized(c, "missing bearer token")
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(signingKey), nil
		})
		if err != nil || !token.Valid {
			return errUnauthorized(c, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return errUnauthorized(c, "invalid token claims")
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			return errUnauthorized(c, "token missing subject")
		}

		c.Locals(profileIDLocal, sub)
		return c.Next()
	}
}

// callerID returns the authenticated profile ID set by AuthMiddleware.
func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals(profileIDLocal).(string)
	return id
}

// parseToken validates a raw token string outside the middleware chain,
// e.g. for WebSocket upgrades where headers are awkward for browsers.
func parseToken(raw, signingKey string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(signingKey), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("token missing subject")
	}
	return sub, nil
}
