package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CacheControl adds no-store headers to API responses so browsers never serve
// stale registry data after an admin edit.
func CacheControl() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if strings.HasPrefix(c.Path(), "/api") {
			c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
			c.Set("Pragma", "no-cache")
			c.Set("Expires", "0")
		}
		return err
	}
}
