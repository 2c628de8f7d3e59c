package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/tutiful/tutiful_backend/configs"
	"github.com/tutiful/tutiful_backend/models"
)

func TestMain(m *testing.M) {
	config.Set("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", Protected(), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c).String() + " " + Role(c))
	})
	app.Get("/tutor", Protected(), TutorRequired(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/agency/:id", Protected(), AgencyAdminRequired(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	return app
}

func get(t *testing.T, app *fiber.App, path string, u *models.User) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if u != nil {
		tok, err := IssueToken(*u)
		require.NoError(t, err)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tok)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRoles(t *testing.T) {
	app := newApp()
	agency, otherAgency := uuid.New(), uuid.New()

	tutor := models.User{ID: uuid.New(), Role: models.RoleTutor, AgencyID: &agency}
	student := models.User{ID: uuid.New(), Role: models.RoleStudent, AgencyID: &agency}
	agencyAdmin := models.User{ID: uuid.New(), Role: models.RoleAgencyAdmin, AgencyID: &agency}
	admin := models.User{ID: uuid.New(), Role: models.RoleAdmin}

	tests := []struct {
		name string
		path string
		user *models.User
		want int
	}{
		{"anonymous", "/tutor", nil, http.StatusBadRequest},
		{"tutor on tutor route", "/tutor", &tutor, http.StatusNoContent},
		{"student on tutor route", "/tutor", &student, http.StatusForbidden},
		{"agency admin on own agency", "/agency/" + agency.String(), &agencyAdmin, http.StatusNoContent},
		{"agency admin on other agency", "/agency/" + otherAgency.String(), &agencyAdmin, http.StatusForbidden},
		{"platform admin on any agency", "/agency/" + otherAgency.String(), &admin, http.StatusNoContent},
		{"tutor on agency route", "/agency/" + agency.String(), &tutor, http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, get(t, app, tc.path, tc.user))
		})
	}
}

func TestParseToken(t *testing.T) {
	u := models.User{ID: uuid.New(), Role: models.RoleTutor}
	tok, err := IssueToken(u)
	require.NoError(t, err)

	id, err := ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	_, err = ParseToken(tok + "x")
	assert.Error(t, err)
	_, err = ParseToken("")
	assert.Error(t, err)
}
