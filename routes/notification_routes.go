package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/tutiful/tutiful_backend/handlers"
	"github.com/tutiful/tutiful_backend/middleware"
)

func NotificationRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	api.Get("/notifications", middleware.Protected(), h.UnreadNotifications)
	api.Get("/ws/notifications", handlers.UpgradeRequired, websocket.New(h.ServeNotifications))
}
