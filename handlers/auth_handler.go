package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tutiful/tutiful_backend/middleware"
	"github.com/tutiful/tutiful_backend/models"
	"github.com/tutiful/tutiful_backend/services"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	FullName   string  `json:"full_name" validate:"required,min=2"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8"`
	Role       string  `json:"role" validate:"required,oneof=student tutor agency_admin admin"`
	AgencyID   *string `json:"agency_id" validate:"omitempty,uuid"`
	GradeLevel *string `json:"grade_level" validate:"omitempty,max=50"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := h.Users.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if isAny(err, services.ErrInvalidCredentials) {
			return errorJSON(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		return internalError(c, err)
	}

	t, err := middleware.IssueToken(user)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create token")
	}
	return c.JSON(fiber.Map{"token": t})
}

// CreateUser lets an admin add students, tutors and agency admins.
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	in := services.NewUser{
		FullName:   req.FullName,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		GradeLevel: req.GradeLevel,
	}
	if req.AgencyID != nil {
		id := uuid.MustParse(*req.AgencyID)
		in.AgencyID = &id
	}
	if in.Role != models.RoleAdmin && in.AgencyID == nil {
		return errorJSON(c, fiber.StatusBadRequest, "agency_id is required for this role")
	}

	user, err := h.Users.Create(c.UserContext(), in)
	if err != nil {
		if isAny(err, services.ErrEmailTaken) {
			return errorJSON(c, fiber.StatusConflict, err.Error())
		}
		return internalError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}
