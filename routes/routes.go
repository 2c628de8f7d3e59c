package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tutiful/tutiful_backend/handlers"
)

// Register mounts every API route on app.
func Register(app *fiber.App, h *handlers.Handler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	AuthRoutes(app, h)
	LessonRoutes(app, h)
	AnalyticsRoutes(app, h)
	NotificationRoutes(app, h)
	PaymentRoutes(app, h)
}
