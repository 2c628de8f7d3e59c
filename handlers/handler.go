package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tutiful/tutiful_backend/logger"
	"github.com/tutiful/tutiful_backend/services"
	"github.com/tutiful/tutiful_backend/websocket"
)

var validate = validator.New()

// Handler carries the services the HTTP layer talks to.
type Handler struct {
	Users         *services.UserService
	Enrollments   *services.EnrollmentService
	Attendance    *services.AttendanceService
	Analytics     *services.AnalyticsService
	Notifications *services.NotificationService
	Payments      *services.PaymentService
	Hub           *websocket.Hub
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// internalError reports err and hides its text from the client.
func internalError(c *fiber.Ctx, err error) error {
	logger.Error(err, map[string]interface{}{"path": c.Path(), "method": c.Method()})
	return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, errors.Errorf("invalid %s", name)
	}
	return id, nil
}

func isAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
