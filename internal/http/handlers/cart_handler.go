package handlers

import (
	"encoding/json"

	"albumstore/internal/log"
	"albumstore/internal/services"
	"albumstore/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(cv)
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	var body struct {
		ProductID string `json:"productId" form:"productId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Requisição inválida.")
	}
	id, ok := validate.ID(body.ProductID)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return fiber.NewError(fiber.StatusBadRequest, "Produto inválido.")
	}
	cv, err := h.Cart.Add(sessionID(c), id)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "cart.add", map[string]any{"product": id, "count": cv.Count})
	return c.Status(fiber.StatusCreated).JSON(cv)
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return fail(c, services.ErrUnknownProduct)
	}
	var body struct {
		Delta json.Number `json:"delta" form:"delta"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Requisição inválida.")
	}
	delta, ok := validate.Delta(body.Delta.String())
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "delta"})
		return fiber.NewError(fiber.StatusBadRequest, "Quantidade inválida.")
	}
	cv, err := h.Cart.UpdateQuantity(sessionID(c), id, delta)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(cv)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return fail(c, services.ErrUnknownProduct)
	}
	cv, err := h.Cart.Remove(sessionID(c), id)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "cart.remove", map[string]any{"product": id})
	return c.JSON(cv)
}
