package auth

import (
	"net/http"
	"strings"

	"courier-dispatch/internal/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const identityKey = "identity"

// Middleware rejects requests without a valid bearer token and stores the
// Identity in the request locals.
func Middleware(tokens *Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return unauthorized(c, "Missing bearer token")
		}

		id, err := tokens.Verify(strings.TrimSpace(raw))
		if err != nil {
			logger.Get().Debug("Rejected session token", zap.Error(err))
			return unauthorized(c, "Invalid session token")
		}

		c.Locals(identityKey, id)
		return c.Next()
	}
}

// FromContext returns the Identity stored by Middleware.
func FromContext(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(identityKey).(Identity)
	return id, ok
}

func unauthorized(c *fiber.Ctx, msg string) error {
	rayID, ok := c.Locals("requestid").(string)
	if !ok {
		rayID = "unknown"
	}
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
		"message": msg,
		"reason":  "no_session",
		"ray_id":  rayID,
	})
}
