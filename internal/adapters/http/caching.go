package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.Get(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics" || path == "/ws":
			ttl = "no-cache"

		case path == "/map-data" || path == "/map-data.geojson" || path == "/v1/map/spec":
			ttl = "public, max-age=30" // facility writes invalidate the server cache

		case path == "/map":
			ttl = "no-cache" // page reloads itself over /ws

		case strings.HasSuffix(path, "/transactions"):
			ttl = "private, max-age=0" // audit trail grows with every write

		case strings.HasPrefix(path, "/v1/facilities"):
			ttl = "public, max-age=60"

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
