package middleware

import (
	"context"
	"strings"

	"perangkat-desa-backend/internal/apperror"
	"perangkat-desa-backend/internal/model"

	"github.com/gofiber/fiber/v2"
)

const sessionKey = "session"

// Authenticator memverifikasi token dan mengembalikan sesi dengan profil terbaru.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Session, error)
}

func Auth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Ambil token dari Header Authorization
		tokenString := ""
		if authHeader := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}
		// Browser tidak bisa mengirim header saat membuka WebSocket
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return apperror.Unauthorized("Token tidak ditemukan")
		}

		// 2. Validasi token + resolve profil
		session, err := auth.Authenticate(c.UserContext(), tokenString)
		if err != nil {
			return err
		}

		// 3. Simpan sesi ke context agar bisa dipakai di handler
		c.Locals(sessionKey, session)
		return c.Next()
	}
}

// CurrentSession mengambil sesi yang diset oleh Auth.
func CurrentSession(c *fiber.Ctx) (model.Session, bool) {
	s, ok := c.Locals(sessionKey).(model.Session)
	return s, ok
}
