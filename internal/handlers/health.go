package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zapedido/zapedido-backend/internal/storage"
)

// HealthHandler reports service health
type HealthHandler struct {
	store storage.Store
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store storage.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check returns basic service health
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "healthy"
	code := fiber.StatusOK
	if _, err := h.store.CountProducts(); err != nil {
		status = "unhealthy"
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status": status,
	})
}
