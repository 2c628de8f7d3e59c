package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tutiful/tutiful_backend/handlers"
	"github.com/tutiful/tutiful_backend/middleware"
)

func AuthRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/login", h.Login)

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Post("/users", h.CreateUser)
}
