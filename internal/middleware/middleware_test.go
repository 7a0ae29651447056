package middleware

import (
	"context"
	"net/http/httptest"
	"testing"

	"perangkat-desa-backend/internal/apperror"
	"perangkat-desa-backend/internal/helper"
	"perangkat-desa-backend/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth map[string]model.Session

func (s stubAuth) Authenticate(_ context.Context, token string) (model.Session, error) {
	if token == "hilang" {
		return model.Session{}, apperror.New(apperror.KindAuthMismatch, "Profil pengguna tidak ditemukan")
	}
	session, ok := s[token]
	if !ok {
		return model.Session{}, apperror.Unauthorized("Token tidak valid atau kadaluwarsa")
	}
	return session, nil
}

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler(logrus.New())})
	auth := stubAuth{
		"kec":  {ID: 1, Role: model.RoleAdminKecamatan},
		"desa": {ID: 2, Role: model.RoleAdminDesa, Desa: "Klapa"},
	}
	app.Use(RequestID())
	app.Get("/me", Auth(auth), func(c *fiber.Ctx) error {
		s, _ := CurrentSession(c)
		return c.SendString(s.Role)
	})
	app.Get("/admin", Auth(auth), Role(model.RoleAdminKecamatan), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestAuth(t *testing.T) {
	app := newTestApp()

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"tanpa token", "", "", fiber.StatusUnauthorized},
		{"token salah", "Bearer ngawur", "", fiber.StatusUnauthorized},
		{"profil hilang", "Bearer hilang", "", fiber.StatusUnauthorized},
		{"header valid", "Bearer desa", "", fiber.StatusOK},
		{"query valid", "", "?token=kec", fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
		})
	}
}

func TestRole(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer desa")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer kec")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
