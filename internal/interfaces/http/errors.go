package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/reflex/inventario-api/internal/application/dto"
	"github.com/reflex/inventario-api/internal/domain"
)

// writeError traduce errores de dominio a respuestas HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var appErr *domain.ApprovalError
	if errors.As(err, &appErr) {
		return writeApprovalError(c, appErr)
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrAlreadyApproved):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_APPROVED", Message: err.Error()})
	case errors.Is(err, domain.ErrOrderApproved):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ORDER_APPROVED", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func writeApprovalError(c *fiber.Ctx, appErr *domain.ApprovalError) error {
	if len(appErr.Shortages) == 0 {
		return c.Status(fiber.StatusConflict).JSON(dto.ApprovalErrorResponse{
			Code:    "CONCURRENT_MODIFICATION",
			Message: appErr.Error(),
		})
	}
	shortages := make([]dto.ShortageDTO, 0, len(appErr.Shortages))
	for _, s := range appErr.Shortages {
		shortages = append(shortages, dto.ShortageDTO{
			ProductCode: s.ProductCode,
			Requested:   s.Requested,
			Available:   s.Available,
			Missing:     s.Missing(),
		})
	}
	return c.Status(fiber.StatusConflict).JSON(dto.ApprovalErrorResponse{
		Code:      "INSUFFICIENT_STOCK",
		Message:   appErr.Error(),
		Shortages: shortages,
	})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
