package handlers

import (
	"albumstore/internal/countdown"

	"github.com/gofiber/fiber/v2"
)

type OfferHandler struct {
	Offer *countdown.Offer
}

func (h *OfferHandler) Get(c *fiber.Ctx) error {
	return c.JSON(h.Offer.Snapshot())
}
