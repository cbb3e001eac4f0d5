package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/flintapp/flint/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	auth := AuthMiddleware(deps.SigningKey)

	// REST API v1 — 15s per-request timeout
	v1 := app.Group("/v1")

	// Venues are public; everything personal sits behind auth.
	v1.Get("/venues/nearby", timeout.NewWithContext(NearbyVenuesHandler(deps), 15*time.Second))
	v1.Get("/venues/search", timeout.NewWithContext(SearchVenuesHandler(deps), 15*time.Second))
	v1.Get("/venues/:id", timeout.NewWithContext(GetVenueHandler(deps), 15*time.Second))
	v1.Get("/stats", timeout.NewWithContext(StatsHandler(deps), 15*time.Second))

	v1.Get("/discovery", auth, timeout.NewWithContext(DiscoveryHandler(deps), 15*time.Second))

	v1.Get("/profiles/me", auth, timeout.NewWithContext(GetOwnProfileHandler(deps), 15*time.Second))
	v1.Put("/profiles/me", auth, timeout.NewWithContext(UpsertProfileHandler(deps), 15*time.Second))
	v1.Put("/profiles/me/location", auth, timeout.NewWithContext(UpdateLocationHandler(deps), 15*time.Second))
	v1.Delete("/profiles/me", auth, timeout.NewWithContext(DeactivateProfileHandler(deps), 15*time.Second))
	v1.Get("/profiles/:id", auth, timeout.NewWithContext(GetProfileHandler(deps), 15*time.Second))

	v1.Post("/swipes", auth, timeout.NewWithContext(SwipeHandler(deps), 15*time.Second))

	v1.Get("/matches", auth, timeout.NewWithContext(ListMatchesHandler(deps), 15*time.Second))
	v1.Get("/matches/:id", auth, timeout.NewWithContext(GetMatchHandler(deps), 15*time.Second))
	v1.Delete("/matches/:id", auth, timeout.NewWithContext(UnmatchHandler(deps), 15*time.Second))
	v1.Get("/matches/:id/messages", auth, timeout.NewWithContext(ListMessagesHandler(deps), 15*time.Second))
	v1.Post("/matches/:id/messages", auth, timeout.NewWithContext(SendMessageHandler(deps), 15*time.Second))
	v1.Post("/matches/:id/read", auth, timeout.NewWithContext(MarkReadHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", auth, GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}
