package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/GDSC-UTSC/gdg-website/internal/middleware"
)

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
		if caller, ok := c.Locals(middleware.LocalUserID).(string); ok && caller != "" {
			logger = logger.With().Str("user_id", caller).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// validationMessage names each failed field and the constraint it broke.
func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "invalid payload"
	}

	parts := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		constraint := fieldErr.Tag()
		if fieldErr.Param() != "" {
			constraint = fmt.Sprintf("%s=%s", constraint, fieldErr.Param())
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fieldErr.Namespace(), constraint))
	}
	return "invalid payload: " + strings.Join(parts, "; ")
}
