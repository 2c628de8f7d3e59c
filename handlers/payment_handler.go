package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tutiful/tutiful_backend/services"
)

type StudentPaymentRequest struct {
	LessonID  string  `json:"lessonId" validate:"required,uuid"`
	StudentID string  `json:"studentId" validate:"required,uuid"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
}

func paymentError(c *fiber.Ctx, err error) error {
	switch {
	case isAny(err, services.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	case isAny(err, services.ErrConcurrentUpdate):
		return errorJSON(c, fiber.StatusConflict, err.Error())
	default:
		return internalError(c, err)
	}
}

func (h *Handler) RecordStudentPayment(c *fiber.Ctx) error {
	agencyID, err := paramUUID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid agency ID")
	}
	var req StudentPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	p, err := h.Payments.RecordStudentPayment(c.UserContext(), agencyID,
		uuid.MustParse(req.LessonID), uuid.MustParse(req.StudentID), req.Amount)
	if err != nil {
		return paymentError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handler) PayTutor(c *fiber.Ctx) error {
	agencyID, err := paramUUID(c, "id")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid agency ID")
	}
	lessonID, err := paramUUID(c, "lessonId")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid lesson ID")
	}
	payout, err := h.Payments.PayTutor(c.UserContext(), agencyID, lessonID)
	if err != nil {
		return paymentError(c, err)
	}
	return c.JSON(payout)
}
