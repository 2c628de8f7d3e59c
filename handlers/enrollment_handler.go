package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tutiful/tutiful_backend/services"
)

type EnrollRequest struct {
	LessonID string `json:"lessonId" validate:"required,uuid"`
}

func enrollmentError(c *fiber.Ctx, err error) error {
	switch {
	case isAny(err, services.ErrConcurrentUpdate):
		return errorJSON(c, fiber.StatusConflict, err.Error())
	case isAny(err,
		services.ErrNotFound,
		services.ErrCapacityExceeded,
		services.ErrAlreadyEnrolled,
		services.ErrScheduleConflict,
		services.ErrGradeMismatch,
		services.ErrNotEnrolled,
		services.ErrInvalidSchedule,
	):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	default:
		return internalError(c, err)
	}
}

// parseEnrollRequest returns a client-facing message when the request is unusable.
func parseEnrollRequest(c *fiber.Ctx) (studentID, lessonID uuid.UUID, problem string) {
	studentID, err := paramUUID(c, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, "Invalid student ID"
	}
	var req EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return uuid.Nil, uuid.Nil, "Cannot parse JSON"
	}
	if err := validate.Struct(req); err != nil {
		return uuid.Nil, uuid.Nil, err.Error()
	}
	return studentID, uuid.MustParse(req.LessonID), ""
}

// EnrollStudent handles POST /lessons/students/:id.
func (h *Handler) EnrollStudent(c *fiber.Ctx) error {
	studentID, lessonID, problem := parseEnrollRequest(c)
	if problem != "" {
		return errorJSON(c, fiber.StatusBadRequest, problem)
	}
	res, err := h.Enrollments.Enroll(c.UserContext(), studentID, lessonID)
	if err != nil {
		return enrollmentError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// UnenrollStudent handles DELETE /lessons/students/:id.
func (h *Handler) UnenrollStudent(c *fiber.Ctx) error {
	studentID, lessonID, problem := parseEnrollRequest(c)
	if problem != "" {
		return errorJSON(c, fiber.StatusBadRequest, problem)
	}
	res, err := h.Enrollments.Unenroll(c.UserContext(), studentID, lessonID)
	if err != nil {
		return enrollmentError(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) EnrollmentStatus(c *fiber.Ctx) error {
	lessonID, err := paramUUID(c, "lessonId")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid lesson ID")
	}
	studentID, err := paramUUID(c, "studentId")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid student ID")
	}
	st, err := h.Enrollments.Status(c.UserContext(), studentID, lessonID)
	if err != nil {
		if isAny(err, services.ErrNotFound) {
			return errorJSON(c, fiber.StatusNotFound, err.Error())
		}
		return internalError(c, err)
	}
	return c.JSON(st)
}
