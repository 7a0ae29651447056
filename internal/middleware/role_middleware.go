package middleware

import (
	"perangkat-desa-backend/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// Role harus dipasang setelah Auth.
func Role(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := CurrentSession(c)
		if !ok {
			return apperror.Forbidden("Akses ditolak: Role tidak valid")
		}

		for _, role := range allowedRoles {
			if role == session.Role {
				return c.Next()
			}
		}

		return apperror.Forbidden("Akses ditolak: Anda tidak memiliki akses ke fitur ini")
	}
}
