package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tutiful/tutiful_backend/middleware"
	"github.com/tutiful/tutiful_backend/services"
)

func (h *Handler) LessonAttendance(c *fiber.Ctx) error {
	lessonID, err := paramUUID(c, "lessonId")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid lesson ID")
	}
	sessions, err := h.Attendance.LessonSessions(c.UserContext(), lessonID)
	if err != nil {
		return attendanceError(c, err)
	}
	return c.JSON(sessions)
}

// MarkAttendance handles PATCH /tutors/lessons/:lessonId/attendance/:attendanceId/mark.
// The acting tutor is the authenticated user.
func (h *Handler) MarkAttendance(c *fiber.Ctx) error {
	lessonID, err := paramUUID(c, "lessonId")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid lesson ID")
	}
	attendanceID, err := paramUUID(c, "attendanceId")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid attendance ID")
	}

	res, err := h.Attendance.MarkAttended(c.UserContext(), lessonID, attendanceID, middleware.UserID(c))
	if err != nil {
		return attendanceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":    "Attendance marked successfully",
		"attendance": res.Session,
		"classes":    res.Classes,
		"summary":    res.Summary,
	})
}

func attendanceError(c *fiber.Ctx, err error) error {
	switch {
	case isAny(err, services.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	case isAny(err, services.ErrUnauthorized):
		return errorJSON(c, fiber.StatusUnauthorized, err.Error())
	case isAny(err, services.ErrAlreadyMarked, services.ErrOutsideWindow, services.ErrInvalidSchedule):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case isAny(err, services.ErrConcurrentUpdate):
		return errorJSON(c, fiber.StatusConflict, err.Error())
	default:
		return internalError(c, err)
	}
}
