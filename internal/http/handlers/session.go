package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Session makes sure every request carries a visitor id in the "sid"
// cookie and exposes it as c.Locals("sid").
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if _, err := uuid.Parse(sid); err != nil {
			sid = uuid.NewString()
			c.Cookie(&fiber.Cookie{Name: "sid", Value: sid, Path: "/", HTTPOnly: true, SameSite: "Lax"})
		}
		c.Locals("sid", sid)
		return c.Next()
	}
}

func sessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals("sid").(string)
	return sid
}
