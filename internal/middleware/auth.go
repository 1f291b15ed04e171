package middleware

import (
	"errors"

	"farmgate-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

// ErrNoSessionUser is returned when a handler needs an identity the session
// does not carry.
var ErrNoSessionUser = errors.New("no user in session")

// RequireAuth ensures a user is in the session. Returns 401 with the
// standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// SessionUserID extracts the authenticated user's id from Locals.
func SessionUserID(c *fiber.Ctx) (uuid.UUID, error) {
	user, ok := c.Locals(userLocal).(map[string]interface{})
	if !ok {
		return uuid.Nil, ErrNoSessionUser
	}
	raw, _ := user["user_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrNoSessionUser
	}
	return id, nil
}
