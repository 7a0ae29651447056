package routes

import (
	"perangkat-desa-backend/internal/handler"
	"perangkat-desa-backend/internal/middleware"
	"perangkat-desa-backend/internal/model"

	"github.com/gofiber/fiber/v2"
)

func SetupDashboardRoutes(app *fiber.App, d *Deps) {
	hdl := handler.NewDashboardHandler(d.Perangkat)

	app.Get("/api/dashboard", middleware.Auth(d.Auth), hdl.GetStats)
	app.Get("/api/admin/rekap", middleware.Auth(d.Auth), middleware.Role(model.RoleAdminKecamatan), hdl.GetRekap)
}
