package handler

import "github.com/gofiber/fiber/v2"

// ServiceName is reported by the health probe.
const ServiceName = "Job Application Review Service"

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// HealthCheck reports a static healthy status without touching dependencies.
func HealthCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(HealthResponse{Status: "healthy", Service: ServiceName})
	}
}
