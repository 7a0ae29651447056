package routes

import (
	"perangkat-desa-backend/internal/handler"
	"perangkat-desa-backend/internal/middleware"
	"perangkat-desa-backend/internal/model"

	"github.com/gofiber/fiber/v2"
)

func SetupSettingRoutes(app *fiber.App, d *Deps) {
	hdl := handler.NewSettingHandler(d.Settings)

	app.Get("/api/branding", hdl.GetBranding) // Public (halaman login)

	api := app.Group("/api/settings", middleware.Auth(d.Auth))
	api.Get("/export", hdl.GetExport)
	api.Get("/upload", hdl.GetUpload)

	kecamatan := middleware.Role(model.RoleAdminKecamatan)
	api.Put("/export", kecamatan, hdl.UpdateExport)
	api.Put("/upload", kecamatan, hdl.UpdateUpload)
	api.Put("/branding", kecamatan, hdl.UpdateBranding)
}
