package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// HeaderSessionID is the header carrying the caller-supplied session id that
// scopes document storage and conversation history.
const HeaderSessionID = "x-session-id"

// Session extracts the session id header and stashes it in request locals.
// Every session-scoped route rejects requests without one.
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := strings.TrimSpace(c.Get(HeaderSessionID))
		if sessionID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "x-session-id header required",
			})
		}

		c.Locals("sessionID", sessionID)
		return c.Next()
	}
}
