package handlers

import (
	"strings"

	"chat-importer/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

const (
	UserHeader = "X-User-ID"
	userKey    = "user_id"
)

// RequireUser reads the caller identity set by the auth gateway.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get(UserHeader))
		if userID == "" {
			return errors.HandleError(c, errors.ErrUnauthenticated(nil))
		}
		c.Locals(userKey, userID)
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) string {
	userID, _ := c.Locals(userKey).(string)
	return userID
}
