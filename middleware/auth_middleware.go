package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	config "github.com/tutiful/tutiful_backend/configs"
	"github.com/tutiful/tutiful_backend/models"
)

const tokenTTL = 72 * time.Hour

func Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(config.Config("JWT_SECRET")),
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if strings.EqualFold(err.Error(), "Missing or malformed JWT") {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

// IssueToken signs the claims the rest of the middleware reads back.
func IssueToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	if user.AgencyID != nil {
		claims["agency_id"] = user.AgencyID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Config("JWT_SECRET")))
}

func claims(c *fiber.Ctx) jwt.MapClaims {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil
	}
	mc, _ := token.Claims.(jwt.MapClaims)
	return mc
}

func claimString(c *fiber.Ctx, key string) string {
	s, _ := claims(c)[key].(string)
	return s
}

// UserID returns the authenticated user's id, or uuid.Nil.
func UserID(c *fiber.Ctx) uuid.UUID {
	id, err := uuid.Parse(claimString(c, "user_id"))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func Role(c *fiber.Ctx) string {
	return claimString(c, "role")
}

func requireRole(message string, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Role(c)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": message,
		})
	}
}

func AdminRequired() fiber.Handler {
	return requireRole("Forbidden: Admin access required", models.RoleAdmin)
}

func TutorRequired() fiber.Handler {
	return requireRole("Forbidden: Tutor access required", models.RoleTutor)
}

// AgencyAdminRequired admits platform admins, and agency admins for the
// agency named by the :id route parameter.
func AgencyAdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch Role(c) {
		case models.RoleAdmin:
			return c.Next()
		case models.RoleAgencyAdmin:
			if claimString(c, "agency_id") == c.Params("id") {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: Agency admin access required",
		})
	}
}

// ParseToken validates a raw token outside the fiber middleware chain.
func ParseToken(raw string) (uuid.UUID, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}
	id, _ := mc["user_id"].(string)
	return uuid.Parse(id)
}
