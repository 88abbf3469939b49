package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/zapedido/zapedido-backend/internal/jobs"
	"github.com/zapedido/zapedido-backend/internal/models"
	"github.com/zapedido/zapedido-backend/internal/services"
	"github.com/zapedido/zapedido-backend/internal/storage"
)

// AdminHandler serves the dashboard JSON API
type AdminHandler struct {
	store          storage.Store
	sessionManager *services.SessionManager
	broadcastJob   *jobs.BroadcastJob
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store storage.Store, sessionManager *services.SessionManager, broadcastJob *jobs.BroadcastJob) *AdminHandler {
	return &AdminHandler{
		store:          store,
		sessionManager: sessionManager,
		broadcastJob:   broadcastJob,
	}
}

// ListOrders returns orders, optionally filtered by ?status=
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	status := models.OrderStatus(c.Query("status"))
	orders, err := h.store.GetOrders(status)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"orders": orders, "count": len(orders)})
}

// ListProducts returns the full catalog including disabled entries
func (h *AdminHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.store.GetProducts()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"products": products})
}

// CreateProductRequest is the payload for adding a catalog entry
type CreateProductRequest struct {
	Name    string `json:"name"`
	Aliases string `json:"aliases"`
	Enabled *bool  `json:"enabled"`
}

// CreateProduct adds a product to the catalog
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	product, err := h.store.CreateProduct(&models.Product{
		Name:    req.Name,
		Aliases: req.Aliases,
		Enabled: enabled,
	})
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	log.Printf("🛍️ Product created: %s", product.Name)
	return c.Status(fiber.StatusCreated).JSON(product)
}

// SetProductEnabled toggles a product's availability
func (h *AdminHandler) SetProductEnabled(c *fiber.Ctx) error {
	name := c.Params("name")
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if err := h.store.SetProductEnabled(name, req.Enabled); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"name": name, "enabled": req.Enabled})
}

// ListClients returns every known client
func (h *AdminHandler) ListClients(c *fiber.Ctx) error {
	clients, err := h.store.GetAllClients()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"clients": clients, "count": len(clients)})
}

// ListTotals returns the accumulated per-product totals
func (h *AdminHandler) ListTotals(c *fiber.Ctx) error {
	totals, err := h.store.GetProductTotals()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"totals": totals})
}

// GetSession exposes one conversation's snapshot for debugging
func (h *AdminHandler) GetSession(c *fiber.Ctx) error {
	phone := c.Params("phone")
	snapshot, ok := h.sessionManager.GetSessionSnapshot(phone)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	}
	return c.JSON(fiber.Map{
		"state":          snapshot.State.String(),
		"ledger":         snapshot.Ledger,
		"reminder_count": snapshot.ReminderCount,
	})
}

// ResetSession drops a conversation back to idle
func (h *AdminHandler) ResetSession(c *fiber.Ctx) error {
	phone := c.Params("phone")
	h.sessionManager.ResetSession(phone)
	return c.JSON(fiber.Map{"phone": phone, "reset": true})
}

// StartBroadcast kicks off a bulk send to every client that has not
// answered yet
func (h *AdminHandler) StartBroadcast(c *fiber.Ctx) error {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message is required"})
	}
	if !h.broadcastJob.Start(req.Message) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "broadcast already running"})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"started": true})
}

// StopBroadcast aborts a running bulk send
func (h *AdminHandler) StopBroadcast(c *fiber.Ctx) error {
	h.broadcastJob.Stop()
	return c.JSON(fiber.Map{"stopped": true})
}
