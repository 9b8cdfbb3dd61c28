package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Orden relevante: los errores más específicos primero.
var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrLotNotFound, fiber.StatusNotFound, "LOT_NOT_FOUND"},
	{domain.ErrWarehouseNotFound, fiber.StatusNotFound, "WAREHOUSE_NOT_FOUND"},
	{domain.ErrTransferNotFound, fiber.StatusNotFound, "TRANSFER_NOT_FOUND"},
	{domain.ErrTransactionNotFound, fiber.StatusNotFound, "TRANSACTION_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrUnauthorized, fiber.StatusForbidden, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrInvalidTransferState, fiber.StatusConflict, "INVALID_TRANSFER_STATE"},
	{domain.ErrAlreadyCancelled, fiber.StatusConflict, "ALREADY_CANCELLED"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// writeError traduce un error del núcleo a status HTTP y cuerpo ErrorResponse.
// Los errores no tipados (y un número de transacción duplicado) son 500 y se registran.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		body := dto.ErrorResponse{Code: m.code, Message: err.Error()}
		if avail, ok := domain.AvailableOf(err); ok {
			body.Available = &avail
		}
		return c.Status(m.status).JSON(body)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{Code: "TIMEOUT", Message: "la operación excedió el tiempo límite y fue revertida"})
	}

	ev := log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method())
	if errors.Is(err, domain.ErrDuplicateTransactionNumber) {
		ev.Bool("alert", true).Msg("número de transacción duplicado")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "DUPLICATE_TRANSACTION_NUMBER", Message: err.Error()})
	}
	ev.Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func forbidden(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: msg})
}
