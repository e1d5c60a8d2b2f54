package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/invorya/inventory-ledger/internal/application/dto"
	"github.com/invorya/inventory-ledger/internal/domain"
)

// respondError traduce la taxonomía de errores del dominio a HTTP.
//
//	ErrNotFound           → 404 NOT_FOUND
//	ErrValidation         → 400 VALIDATION
//	ErrInvalidState       → 409 INVALID_STATE
//	ErrInsufficientStock  → 409 INSUFFICIENT_STOCK
//	ConsistencyError      → 500 CONSISTENCY (la tx ya fue revertida)
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case domain.IsConsistency(err):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "CONSISTENCY", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
