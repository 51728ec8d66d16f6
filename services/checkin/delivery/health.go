package delivery

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func NewHealthDelivery(router fiber.Router, version string) {
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   version,
		})
	})
}
