package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pricecast/pricecast/internal/models"
	"github.com/pricecast/pricecast/internal/services"
)

// Health handles health check requests
func (h *Handler) Health(c *fiber.Ctx) error {
	resp := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   services.APIVersion,
	}
	source := h.engine.Source()
	resp.DataSource = source.Name()
	if v, err := source.Version(c.UserContext()); err == nil {
		resp.DataVersion = v.UTC().Format(time.RFC3339)
	} else {
		resp.Status = "degraded"
	}
	return c.JSON(resp)
}

// Root handles GET /
func (h *Handler) Root(c *fiber.Ctx) error {
	return c.JSON(h.catalog.Info(c.UserContext(), h.full))
}

// NotFound handles unknown routes
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error: "Route not found: " + c.Path(),
	})
}
