package handler

import (
	"perangkat-desa-backend/internal/middleware"
	"perangkat-desa-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	uc *usecase.PerangkatUsecase
}

func NewDashboardHandler(uc *usecase.PerangkatUsecase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	session, _ := middleware.CurrentSession(c)
	stats, err := h.uc.Dashboard(c.UserContext(), session)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Berhasil mengambil statistik",
		"data":    stats,
	})
}

func (h *DashboardHandler) GetRekap(c *fiber.Ctx) error {
	session, _ := middleware.CurrentSession(c)
	rekap, err := h.uc.Rekap(c.UserContext(), session)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Berhasil mengambil rekap",
		"data":    rekap,
	})
}
