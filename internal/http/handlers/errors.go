package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"albumstore/internal/checkout"
	applog "albumstore/internal/log"
	"albumstore/internal/services"
	"albumstore/internal/validate"
)

const msgInternal = "Algo deu errado. Tente novamente."

// ErrorHandler logs the failure and answers with a generic JSON body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := msgInternal
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < 500 {
		code = fe.Code
		msg = fe.Message
	}
	applog.Error(c, "server.error", err, map[string]any{"status": code})
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

// fail maps domain errors onto client responses; anything unknown goes to
// ErrorHandler.
func fail(c *fiber.Ctx, err error) error {
	var ferr *validate.FieldError
	switch {
	case errors.As(err, &ferr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": ferr.Message, "field": ferr.Field})
	case errors.Is(err, services.ErrUnknownProduct):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Produto não encontrado."})
	case errors.Is(err, services.ErrNoSession):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Nenhum checkout em andamento."})
	case errors.Is(err, services.ErrEmptyCart):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Seu carrinho está vazio."})
	case errors.Is(err, checkout.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Ação indisponível nesta etapa do checkout."})
	case errors.Is(err, checkout.ErrNoPixCode):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Nenhum código PIX para copiar."})
	case errors.Is(err, checkout.ErrUnknownShipping), errors.Is(err, checkout.ErrUnknownMethod):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Opção inválida."})
	}
	return err
}
