package delivery

import (
	"errors"
	"kidcheck/domain"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps domain errors to the HTTP status of the REST contract.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrMissingField), errors.Is(err, domain.ErrAlreadyExists):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyAnswered):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "Request not found"
	case errors.Is(err, domain.ErrAlreadyExists):
		return "User already exists"
	default:
		return err.Error()
	}
}

func failure(c *fiber.Ctx, status int, message string, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error":   errorMessage(err),
	})
}
