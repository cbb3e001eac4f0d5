package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
)

// buildVersion returns the module version stamped by the Go toolchain,
// or "dev" for local builds.
func buildVersion() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}

// HealthHandler is the liveness probe: the process is up and serving.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	version := buildVersion()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": version,
		})
	}
}

// ReadyHandler is the readiness probe. Postgres, NATS, and Valkey gate
// readiness; the workflow engine is reported but does not, since the API
// deliberately runs without it (matches are then created un-notified).
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		allOK := true

		fail := func(name, detail string) {
			checks[name] = detail
			allOK = false
		}

		if deps.DB == nil {
			fail("database", "not configured")
		} else if err := deps.DB.Pool.Ping(ctx); err != nil {
			fail("database", "error: "+err.Error())
		} else {
			checks["database"] = "ok"
		}

		switch {
		case deps.NATS == nil:
			checks["nats"] = "not configured"
		case deps.NATS.IsConnected():
			checks["nats"] = "ok"
		default:
			fail("nats", "disconnected")
		}

		if deps.Cache == nil {
			checks["cache"] = "not configured"
		} else if _, err := deps.Cache.Get(ctx, "__health_check__"); err != nil && err.Error() != "valkey nil message" {
			// A missing key is the expected answer; anything else means
			// the cache is unreachable.
			fail("cache", "error: "+err.Error())
		} else {
			checks["cache"] = "ok"
		}

		if deps.Workflows == nil {
			checks["workflows"] = "not configured"
		} else {
			checks["workflows"] = "ok"
		}

		status, code := "ready", fiber.StatusOK
		if !allOK {
			status, code = "not ready", fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
