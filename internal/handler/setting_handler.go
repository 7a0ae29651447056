package handler

import (
	"perangkat-desa-backend/internal/helper"
	"perangkat-desa-backend/internal/model"
	"perangkat-desa-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

type SettingHandler struct {
	uc *usecase.SettingUsecase
}

func NewSettingHandler(uc *usecase.SettingUsecase) *SettingHandler {
	return &SettingHandler{uc: uc}
}

func (h *SettingHandler) GetExport(c *fiber.Ctx) error {
	cfg, err := h.uc.ExportConfig(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": cfg})
}

func (h *SettingHandler) UpdateExport(c *fiber.Ctx) error {
	var req model.ExportConfig
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Format data salah")
	}
	if err := h.uc.SaveExportConfig(c.UserContext(), req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Pengaturan export berhasil disimpan"})
}

func (h *SettingHandler) GetUpload(c *fiber.Ctx) error {
	cfg, err := h.uc.UploadConfig(c.UserContext())
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = model.UploadConfig{}
	}
	return c.JSON(fiber.Map{"data": cfg, "keys": model.UploadKeys})
}

func (h *SettingHandler) UpdateUpload(c *fiber.Ctx) error {
	var req model.UploadConfig
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Format data salah")
	}
	if err := h.uc.SaveUploadConfig(c.UserContext(), req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Pengaturan upload berhasil disimpan"})
}

// GetBranding dipakai halaman login, jadi tidak butuh token.
func (h *SettingHandler) GetBranding(c *fiber.Ctx) error {
	b, err := h.uc.Branding(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": b})
}

func (h *SettingHandler) UpdateBranding(c *fiber.Ctx) error {
	var req model.Branding
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Format data salah")
	}
	if err := h.uc.SaveBranding(c.UserContext(), req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Branding berhasil disimpan"})
}
