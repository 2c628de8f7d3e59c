package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tutiful/tutiful_backend/handlers"
	"github.com/tutiful/tutiful_backend/middleware"
)

func PaymentRoutes(app *fiber.App, h *handlers.Handler) {
	agency := app.Group("/api/v1/agency", middleware.Protected())
	agency.Post("/:id/payments", middleware.AgencyAdminRequired(), h.RecordStudentPayment)
	agency.Post("/:id/lessons/:lessonId/tutor-payouts", middleware.AgencyAdminRequired(), h.PayTutor)
	agency.Get("/:id/lessons/:lessonId/next-grade-options", middleware.AgencyAdminRequired(), h.NextGradeOptions)
	agency.Post("/:id/lessons/:lessonId/progression-template", middleware.AgencyAdminRequired(), h.SaveProgressionTemplate)
}
