package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/zapedido/zapedido-backend/internal/handlers"
	"github.com/zapedido/zapedido-backend/internal/jobs"
	"github.com/zapedido/zapedido-backend/internal/middleware"
	"github.com/zapedido/zapedido-backend/internal/services"
	"github.com/zapedido/zapedido-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, sessionManager *services.SessionManager, twilioService *services.TwilioService, broadcastJob *jobs.BroadcastJob) {
	whatsappHandler := handlers.NewWhatsAppHandler(store, sessionManager, twilioService)
	healthHandler := handlers.NewHealthHandler(store)
	adminHandler := handlers.NewAdminHandler(store, sessionManager, broadcastJob)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "ZapEdido Backend",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":        "/health",
				"webhook":       "/webhook/whatsapp",
				"test_whatsapp": "/test/whatsapp",
				"admin":         "/admin",
			},
		})
	})

	app.Get("/health", healthHandler.Check)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")
	if os.Getenv("ENVIRONMENT") == "development" || os.Getenv("DISABLE_WEBHOOK_VALIDATION") == "true" {
		// skip validation so ngrok tunnels work
		webhooks.Post("/whatsapp", whatsappHandler.HandleWebhook)
		log.Println("⚠️  WhatsApp webhook validation DISABLED for development")
	} else {
		webhooks.Post("/whatsapp", middleware.ValidateTwilioSignature(), whatsappHandler.HandleWebhook)
	}

	// ========== TEST ROUTES (Development Only) ==========
	app.Post("/test/whatsapp", whatsappHandler.HandleTestWebhook)

	// ========== ADMIN ROUTES ==========
	admin := app.Group("/admin", middleware.RequireAdminToken())
	admin.Get("/orders", adminHandler.ListOrders)
	admin.Get("/products", adminHandler.ListProducts)
	admin.Post("/products", adminHandler.CreateProduct)
	admin.Patch("/products/:name/enabled", adminHandler.SetProductEnabled)
	admin.Get("/clients", adminHandler.ListClients)
	admin.Get("/totals", adminHandler.ListTotals)
	admin.Get("/sessions/:phone", adminHandler.GetSession)
	admin.Post("/sessions/:phone/reset", adminHandler.ResetSession)
	admin.Post("/broadcast", adminHandler.StartBroadcast)
	admin.Delete("/broadcast", adminHandler.StopBroadcast)
}
