package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwilioSignatureKnownAnswer(t *testing.T) {
	// computed independently: base64(hmac-sha1(token, url + sorted k+v))
	params := map[string]string{
		"Body":       "2 mangas",
		"From":       "whatsapp:+5511999990000",
		"MessageSid": "SM123",
	}
	got := twilioSignature("12345", "https://zapedido.example.com/webhook/whatsapp", params)
	assert.Equal(t, "j5zHw/Slz+5vWKY/H5ADxuTG5Bc=", got)
}

func TestValidateTwilioSignature(t *testing.T) {
	t.Setenv("TWILIO_AUTH_TOKEN", "12345")

	app := fiber.New()
	app.Post("/webhook/whatsapp", ValidateTwilioSignature(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	form := "Body=oi&From=whatsapp%3A%2B5511999990000"
	params := map[string]string{"Body": "oi", "From": "whatsapp:+5511999990000"}
	signature := twilioSignature("12345", "http://example.com/webhook/whatsapp", params)

	post := func(sig string) int {
		req := httptest.NewRequest("POST", "http://example.com/webhook/whatsapp", strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if sig != "" {
			req.Header.Set("X-Twilio-Signature", sig)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, post(signature))
	assert.Equal(t, fiber.StatusUnauthorized, post("bogus"))
	assert.Equal(t, fiber.StatusUnauthorized, post(""))
}
