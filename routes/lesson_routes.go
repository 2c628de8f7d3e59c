package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tutiful/tutiful_backend/handlers"
	"github.com/tutiful/tutiful_backend/middleware"
)

func LessonRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	lessons := api.Group("/lessons", middleware.Protected())
	lessons.Post("/students/:id", h.EnrollStudent)
	lessons.Delete("/students/:id", h.UnenrollStudent)
	lessons.Get("/:lessonId/students/:studentId/status", h.EnrollmentStatus)

	tutor := api.Group("/tutors/lessons", middleware.Protected(), middleware.TutorRequired())
	tutor.Get("/:lessonId/attendance", h.LessonAttendance)
	tutor.Patch("/:lessonId/attendance/:attendanceId/mark", h.MarkAttendance)
}
