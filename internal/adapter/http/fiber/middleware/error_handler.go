package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

// ErrorHandler maps domain errors to status codes. Server errors are
// logged and answered with a generic message.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &fe):
			code = fe.Code
			message = fe.Message
		case errors.As(err, &ve):
			code = fiber.StatusBadRequest
			message = ve.Error()
		case errors.Is(err, domain.ErrInvalidRequest):
			code = fiber.StatusBadRequest
			message = err.Error()
		case errors.Is(err, domain.ErrNotFound):
			code = fiber.StatusNotFound
			message = "Not found"
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("Internal Server Error", zap.Error(err), zap.String("path", c.Path()))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": message,
		})
	}
}
