package handler

import (
	"perangkat-desa-backend/internal/helper"
	"perangkat-desa-backend/internal/middleware"
	"perangkat-desa-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler mengelola akun admin desa (khusus admin kecamatan).
type AdminHandler struct {
	uc *usecase.AdminUsecase
}

func NewAdminHandler(uc *usecase.AdminUsecase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

func (h *AdminHandler) GetUsers(c *fiber.Ctx) error {
	session, _ := middleware.CurrentSession(c)
	users, err := h.uc.ListUsers(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": users})
}

func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req usecase.CreateAdminDesaInput
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Format data salah")
	}

	session, _ := middleware.CurrentSession(c)
	akun, err := h.uc.CreateAdminDesa(c.UserContext(), session, req)
	if err != nil {
		return err
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Admin desa berhasil dibuat", akun)
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	session, _ := middleware.CurrentSession(c)
	if err := h.uc.DeleteUser(c.UserContext(), session, uint(id)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User berhasil dihapus"})
}
