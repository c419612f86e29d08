package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/facilitymap/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers the map, facility, GraphQL and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// Map
	app.Get("/map-data", timeout.NewWithContext(MapDataHandler(deps), requestTimeout))
	app.Get("/map-data.geojson", timeout.NewWithContext(MapGeoJSONHandler(deps), requestTimeout))
	app.Get("/map", timeout.NewWithContext(MapPageHandler(deps), requestTimeout))

	v1 := app.Group("/v1")
	v1.Get("/map/spec", timeout.NewWithContext(MapSpecHandler(deps), requestTimeout))

	// Facilities
	v1.Get("/facilities", timeout.NewWithContext(ListFacilitiesHandler(deps), requestTimeout))
	v1.Post("/facilities", timeout.NewWithContext(CreateFacilityHandler(deps), requestTimeout))
	v1.Get("/facilities/:id", timeout.NewWithContext(GetFacilityHandler(deps), requestTimeout))
	v1.Put("/facilities/:id", timeout.NewWithContext(UpdateFacilityHandler(deps), requestTimeout))
	v1.Delete("/facilities/:id", timeout.NewWithContext(DeleteFacilityHandler(deps), requestTimeout))
	v1.Get("/facilities/:id/transactions", timeout.NewWithContext(FacilityTransactionsHandler(deps), requestTimeout))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	// WebSocket relay of facility events; needs NATS.
	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
