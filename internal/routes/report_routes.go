package routes

import (
	"perangkat-desa-backend/internal/handler"
	"perangkat-desa-backend/internal/middleware"
	"perangkat-desa-backend/internal/model"

	"github.com/gofiber/fiber/v2"
)

func SetupReportRoutes(app *fiber.App, d *Deps) {
	hdl := handler.NewReportHandler(d.Perangkat)
	auth := middleware.Auth(d.Auth)
	kecamatan := middleware.Role(model.RoleAdminKecamatan)

	app.Get("/api/perangkat/export/pdf", auth, hdl.ExportPDF) // Admin desa juga boleh cetak PDF
	app.Get("/api/perangkat/export/xlsx", auth, kecamatan, hdl.ExportXLSX)
	app.Post("/api/perangkat/import", auth, kecamatan, hdl.Import)
}
