package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const dependencyPingTimeout = 2 * time.Second

// Pinger is the readiness contract a backing dependency satisfies.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	startedAt   time.Time
	deps        map[string]Pinger
}

// NewHealthHandler wires the named dependencies into the readiness probe.
func NewHealthHandler(serviceName, version string, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		startedAt:   time.Now().UTC(),
		deps:        deps,
	}
}

// Live reports process liveness without touching any dependency.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
		"uptime":  time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}

// Ready pings every registered dependency and fails the probe if any
// one of them is unreachable.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), dependencyPingTimeout)
	defer cancel()

	status := fiber.Map{}
	ready := true
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			status[name] = err.Error()
			ready = false
			continue
		}
		status[name] = "ok"
	}

	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "one or more dependencies unavailable",
				"details": status,
			},
		})
	}
	return c.JSON(fiber.Map{
		"status":       "ready",
		"dependencies": status,
	})
}
