package handlers

import (
	"errors"

	"albumstore/internal/checkout"
	"albumstore/internal/domain"
	"albumstore/internal/log"
	"albumstore/internal/services"
	"albumstore/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
}

func (h *CheckoutHandler) Open(c *fiber.Ctx) error {
	s, err := h.Checkout.Open(sessionID(c))
	if err != nil {
		return fail(c, err)
	}
	log.Info(c, "checkout.open", map[string]any{"total": s.Total().StringFixed(2)})
	return c.Status(fiber.StatusCreated).JSON(s.Snapshot())
}

func (h *CheckoutHandler) Get(c *fiber.Ctx) error {
	s, err := h.Checkout.Get(sessionID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(s.Snapshot())
}

func (h *CheckoutHandler) Discard(c *fiber.Ctx) error {
	if err := h.Checkout.Discard(sessionID(c)); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// with loads the visitor's session, parses the body into dst when given,
// runs fn and answers with the resulting snapshot.
func (h *CheckoutHandler) with(c *fiber.Ctx, dst any, fn func(s *checkout.Session) error) error {
	s, err := h.Checkout.Get(sessionID(c))
	if err != nil {
		return fail(c, err)
	}
	if dst != nil {
		if err := c.BodyParser(dst); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Requisição inválida.")
		}
	}
	if err := fn(s); err != nil {
		return fail(c, err)
	}
	return c.JSON(s.Snapshot())
}

func (h *CheckoutHandler) SetCEP(c *fiber.Ctx) error {
	var body struct {
		CEP string `json:"cep" form:"cep"`
	}
	return h.with(c, &body, func(s *checkout.Session) error {
		return s.SetCEP(c.UserContext(), body.CEP)
	})
}

func (h *CheckoutHandler) SetCustomer(c *fiber.Ctx) error {
	var body checkout.Customer
	return h.with(c, &body, func(s *checkout.Session) error {
		return s.SetCustomer(body)
	})
}

func (h *CheckoutHandler) SetAddress(c *fiber.Ctx) error {
	var body struct {
		Number     string `json:"number" form:"number"`
		Complement string `json:"complement" form:"complement"`
	}
	return h.with(c, &body, func(s *checkout.Session) error {
		return s.SetAddressLine(body.Number, body.Complement)
	})
}

func (h *CheckoutHandler) SetShipping(c *fiber.Ctx) error {
	var body struct {
		ID domain.ShippingID `json:"id" form:"id"`
	}
	return h.with(c, &body, func(s *checkout.Session) error {
		return s.SelectShipping(body.ID)
	})
}

func (h *CheckoutHandler) SetPaymentMethod(c *fiber.Ctx) error {
	var body struct {
		Method domain.PaymentMethod `json:"method" form:"method"`
	}
	return h.with(c, &body, func(s *checkout.Session) error {
		return s.SelectPaymentMethod(body.Method)
	})
}

func (h *CheckoutHandler) SetCard(c *fiber.Ctx) error {
	var body struct {
		Number string `json:"number" form:"number"`
		Name   string `json:"name" form:"name"`
		Expiry string `json:"expiry" form:"expiry"`
		CVV    string `json:"cvv" form:"cvv"`
	}
	return h.with(c, &body, func(s *checkout.Session) error {
		return s.SetCard(checkout.Card{Number: body.Number, Name: body.Name, Expiry: body.Expiry, CVV: body.CVV})
	})
}

// Finalize answers 202 while the session is processing; clients poll Get.
func (h *CheckoutHandler) Finalize(c *fiber.Ctx) error {
	return h.submit(c, "checkout.finalize", (*checkout.Session).Finalize)
}

func (h *CheckoutHandler) RetryPix(c *fiber.Ctx) error {
	return h.submit(c, "checkout.retry_pix", (*checkout.Session).RetryWithPix)
}

func (h *CheckoutHandler) submit(c *fiber.Ctx, action string, fn func(*checkout.Session) error) error {
	s, err := h.Checkout.Get(sessionID(c))
	if err != nil {
		return fail(c, err)
	}
	if err := fn(s); err != nil {
		var ferr *validate.FieldError
		if errors.As(err, &ferr) {
			log.Security(c, "validation.fail", map[string]any{"action": action, "field": ferr.Field})
		}
		return fail(c, err)
	}
	snap := s.Snapshot()
	log.Audit(c, action, map[string]any{"method": snap.PaymentMethod, "total": snap.Total.StringFixed(2)})
	return c.Status(fiber.StatusAccepted).JSON(snap)
}

func (h *CheckoutHandler) Back(c *fiber.Ctx) error {
	return h.with(c, nil, (*checkout.Session).BackToForm)
}

func (h *CheckoutHandler) Close(c *fiber.Ctx) error {
	return h.with(c, nil, (*checkout.Session).Close)
}

func (h *CheckoutHandler) Copy(c *fiber.Ctx) error {
	s, err := h.Checkout.Get(sessionID(c))
	if err != nil {
		return fail(c, err)
	}
	code, err := s.CopyPixCode()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"pixCode": code, "checkout": s.Snapshot()})
}
