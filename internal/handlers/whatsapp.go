package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/zapedido/zapedido-backend/internal/models"
	"github.com/zapedido/zapedido-backend/internal/services"
	"github.com/zapedido/zapedido-backend/internal/storage"
)

// WhatsAppHandler handles WhatsApp webhook requests
type WhatsAppHandler struct {
	store          storage.Store
	sessionManager *services.SessionManager
	twilioService  *services.TwilioService
}

// NewWhatsAppHandler creates a new WhatsApp handler
func NewWhatsAppHandler(store storage.Store, sessionManager *services.SessionManager, twilioService *services.TwilioService) *WhatsAppHandler {
	return &WhatsAppHandler{
		store:          store,
		sessionManager: sessionManager,
		twilioService:  twilioService,
	}
}

// TwilioWebhookPayload represents an incoming WhatsApp message from Twilio
type TwilioWebhookPayload struct {
	MessageSid  string `form:"MessageSid"`
	AccountSid  string `form:"AccountSid"`
	From        string `form:"From"` // "whatsapp:+5511999999999"
	To          string `form:"To"`
	Body        string `form:"Body"`
	ProfileName string `form:"ProfileName"`
	NumMedia    string `form:"NumMedia"`
	MediaUrl0   string `form:"MediaUrl0"`
}

// HandleWebhook processes incoming WhatsApp messages
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	if payload.From == "" {
		// status callbacks and other non-message events
		return c.SendStatus(fiber.StatusOK)
	}

	phone := strings.TrimPrefix(payload.From, "whatsapp:")
	log.Printf("📱 WhatsApp message from %s: %s", phone, payload.Body)

	msgType := services.MessageText
	if payload.Body == "" || (payload.NumMedia != "" && payload.NumMedia != "0") {
		msgType = services.MessageOther
	}

	meta := h.clientMetadata(phone, payload.ProfileName)

	result, err := h.sessionManager.ProcessMessage(phone, payload.Body, msgType, meta)
	if err != nil {
		log.Printf("Error processing message from %s: %v", phone, err)
		return c.SendStatus(fiber.StatusOK)
	}

	if h.twilioService != nil {
		for _, msg := range result.Outbound {
			if err := h.twilioService.SendWhatsAppMessage(phone, msg); err != nil {
				log.Printf("❌ Failed to send WhatsApp response: %v", err)
			}
		}
	} else {
		for _, msg := range result.Outbound {
			log.Printf("📤 Response (not sent - Twilio not configured): %s", msg)
		}
	}

	return c.SendStatus(fiber.StatusOK)
}

// clientMetadata upserts the client record and marks it as answered so
// broadcasts skip it
func (h *WhatsAppHandler) clientMetadata(phone, profileName string) services.Metadata {
	client, err := h.store.UpsertClient(&models.Client{Phone: phone, Name: profileName})
	if err != nil {
		log.Printf("Error upserting client %s: %v", phone, err)
		return services.Metadata{Name: profileName}
	}
	if err := h.store.SetClientAnswered(phone, true); err != nil {
		log.Printf("Error marking client %s answered: %v", phone, err)
	}
	return services.Metadata{Name: client.Name, OrderType: client.OrderType}
}

// TestWebhookPayload is the JSON shape of the development endpoint
type TestWebhookPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
	Type    string `json:"type"` // "text" (default) or anything else
}

// HandleTestWebhook processes test messages without Twilio (development)
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	msgType := services.MessageText
	if payload.Type != "" && payload.Type != "text" {
		msgType = services.MessageOther
	}

	meta := h.clientMetadata(payload.From, "")
	result, err := h.sessionManager.ProcessMessage(payload.From, payload.Message, msgType, meta)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"state":      result.State.String(),
		"bot_active": result.BotActive,
		"responses":  result.Outbound,
	})
}
