package middleware

import (
	"crypto/subtle"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
)

// RequireAdminToken guards the dashboard API with the static token from
// ADMIN_TOKEN
func RequireAdminToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := os.Getenv("ADMIN_TOKEN")
		if token == "" {
			log.Println("ERROR: ADMIN_TOKEN not set")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Server configuration error",
			})
		}

		provided := c.Get("X-Admin-Token")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid admin token",
			})
		}

		return c.Next()
	}
}
