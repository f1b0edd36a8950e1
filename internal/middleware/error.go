package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/pricecast/pricecast/internal/logging"
	"github.com/pricecast/pricecast/internal/models"
)

// ErrorHandler renders errors that escape the handlers (fiber errors,
// recovered panics, body limits) as {"error": message}.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		logger.WithContext(c.UserContext()).Error("Request error",
			"path", c.Path(),
			"method", c.Method(),
			"status", code,
			"error", err,
		)

		return c.Status(code).JSON(models.ErrorResponse{Error: message})
	}
}
