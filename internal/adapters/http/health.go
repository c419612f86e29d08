package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/facilitymap/internal/pkg/metrics"
)

const readyTimeout = 3 * time.Second

// readinessCheck pings one backend. Optional backends report their state
// but never make the service unready.
type readinessCheck struct {
	name     string
	required bool
	ping     func(ctx context.Context) error // nil means not configured
}

var errDisconnected = errors.New("disconnected")

func readinessChecks(deps *Dependencies) []readinessCheck {
	checks := []readinessCheck{{name: "database", required: true}, {name: "nats"}, {name: "cache"}}

	if deps.DB != nil {
		checks[0].ping = func(ctx context.Context) error {
			metrics.UpdateDBPoolMetrics(deps.DB.Pool.Stat())
			return deps.DB.Ping(ctx)
		}
	}
	if deps.NATS != nil {
		checks[1].ping = func(context.Context) error {
			if !deps.NATS.IsConnected() {
				return errDisconnected
			}
			return nil
		}
	}
	if deps.Cache != nil {
		checks[2].ping = deps.Cache.Ping
	}
	return checks
}

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": "dev",
		})
	}
}

// ReadyHandler reports 200 when every required backend answers, 503 otherwise.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	checks := readinessChecks(deps)

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
		defer cancel()

		results := make(map[string]string, len(checks))
		ready := true
		for _, check := range checks {
			switch {
			case check.ping == nil:
				results[check.name] = "not configured"
				if check.required {
					ready = false
				}
			default:
				if err := check.ping(ctx); err != nil {
					results[check.name] = "error: " + err.Error()
					if check.required {
						ready = false
					}
				} else {
					results[check.name] = "ok"
				}
			}
		}

		status, code := "ready", fiber.StatusOK
		if !ready {
			status, code = "not ready", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": results,
		})
	}
}
