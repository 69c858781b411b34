package handlers

import (
	"albumstore/internal/log"
	"albumstore/internal/services"
	"albumstore/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

func (h *CatalogHandler) List(c *fiber.Ctx) error {
	secs, err := h.Catalog.Sections(sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"sections": secs})
}

func (h *CatalogHandler) Product(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return fail(c, services.ErrUnknownProduct)
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}
