package handler

import (
	"perangkat-desa-backend/internal/helper"
	"perangkat-desa-backend/internal/middleware"
	"perangkat-desa-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth *usecase.AuthUsecase
}

func NewAuthHandler(auth *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Format data salah")
	}

	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":    "Login berhasil",
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
		"data":       res.Session,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	session, _ := middleware.CurrentSession(c)
	if err := h.auth.Logout(c.UserContext(), session); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Logout berhasil"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	session, _ := middleware.CurrentSession(c)
	akun, err := h.auth.Me(c.UserContext(), session)
	if err != nil {
		return err
	}
	return helper.Success(c, "Berhasil mengambil profil", fiber.Map{
		"session": session,
		"email":   akun.Email,
		"profil":  akun.Profil,
	})
}
