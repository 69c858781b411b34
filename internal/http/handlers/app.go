package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"albumstore/internal/config"
	applog "albumstore/internal/log"
)

// NewApp builds the Fiber app with the global middleware stack and all routes.
func NewApp(cfg config.Config, deps *Deps) *fiber.App {
	bodyMax := cfg.BodyMax
	if bodyMax <= 0 {
		bodyMax = 1 << 20
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		BodyLimit:    bodyMax,
		ErrorHandler: ErrorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	if cfg.RateMax > 0 {
		span := cfg.RateSpan
		if span <= 0 {
			span = time.Minute
		}
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateMax,
			Expiration: span,
			Next: func(c *fiber.Ctx) bool {
				return c.Path() == "/healthz"
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.limit.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Muitas requisições. Tente novamente em instantes."})
			},
		}))
	}

	Register(app, deps)
	return app
}
