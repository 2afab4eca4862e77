package auth

import (
	"crypto/subtle"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	// HeaderAPIKey carries the shared API key.
	HeaderAPIKey = "X-API-Key"
	// HeaderUserID carries the authenticated user id resolved by the gateway.
	HeaderUserID = "X-User-ID"
	// LocalsUserID is the fiber locals key holding the numeric user id.
	LocalsUserID = "user_id"
)

// Config configures the auth middleware.
type Config struct {
	// ApiKey is the expected key. An empty key disables the check.
	ApiKey string
}

// New returns a middleware that rejects requests without the configured API key
// and records the caller's user id for history stamping.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey != "" {
			key := c.Get(HeaderAPIKey)
			if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.ApiKey)) != 1 {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
			}
		}

		if raw := c.Get(HeaderUserID); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid " + HeaderUserID + " header"})
			}
			c.Locals(LocalsUserID, uint(id))
		}

		return c.Next()
	}
}

// UserID returns the user id stored by the middleware, or nil for anonymous callers.
func UserID(c *fiber.Ctx) *uint {
	if id, ok := c.Locals(LocalsUserID).(uint); ok {
		return &id
	}
	return nil
}
