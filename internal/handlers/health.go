package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trackhub-campus/trackhub-backend/database"
)

// Health reports service liveness and database connectivity.
func Health(c *fiber.Ctx) error {
	status := "healthy"
	statusCode := fiber.StatusOK

	if database.DB != nil {
		sqlDB, err := database.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			status = "unhealthy"
			statusCode = fiber.StatusServiceUnavailable
		}
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"version": "1.0.0",
	})
}
