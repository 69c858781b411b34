package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Register mounts the JSON API under /api/v1 plus the health probe.
func Register(app *fiber.App, deps *Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	api := app.Group("/api/v1", Session())

	api.Get("/catalog", deps.CatalogHandler.List)
	api.Get("/products/:id", deps.CatalogHandler.Product)
	api.Get("/offer", deps.OfferHandler.Get)

	api.Get("/cart", deps.CartHandler.View)
	api.Post("/cart/items", deps.CartHandler.Add)
	api.Patch("/cart/items/:id", deps.CartHandler.Update)
	api.Delete("/cart/items/:id", deps.CartHandler.Remove)

	co := api.Group("/checkout")
	co.Post("/", deps.CheckoutHandler.Open)
	co.Get("/", deps.CheckoutHandler.Get)
	co.Delete("/", deps.CheckoutHandler.Discard)
	co.Put("/cep", deps.CheckoutHandler.SetCEP)
	co.Put("/customer", deps.CheckoutHandler.SetCustomer)
	co.Put("/address", deps.CheckoutHandler.SetAddress)
	co.Put("/shipping", deps.CheckoutHandler.SetShipping)
	co.Put("/payment-method", deps.CheckoutHandler.SetPaymentMethod)
	co.Put("/card", deps.CheckoutHandler.SetCard)
	co.Post("/finalize", deps.CheckoutHandler.Finalize)
	co.Post("/retry-pix", deps.CheckoutHandler.RetryPix)
	co.Post("/back", deps.CheckoutHandler.Back)
	co.Post("/close", deps.CheckoutHandler.Close)
	co.Post("/copy", deps.CheckoutHandler.Copy)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Página não encontrada."})
	})
}
