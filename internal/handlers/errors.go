package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screening/internal/apperrors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
	Field string `json:"field,omitempty"`
}

// NewErrorHandler maps AppErrors and fiber errors to JSON responses. Causes
// of internal errors are logged, never returned.
func NewErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(ErrorResponse{Error: fe.Message, Code: fe.Code})
		}

		status := apperrors.HTTPStatus(err)
		resp := ErrorResponse{Error: apperrors.PublicMessage(err), Code: status}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			resp.Field = appErr.Field
		}

		if status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("request_id", RequestID(c)),
				zap.Error(err),
			)
		}

		return c.Status(status).JSON(resp)
	}
}
