package routes

import (
	"perangkat-desa-backend/internal/handler"
	"perangkat-desa-backend/internal/middleware"
	"perangkat-desa-backend/internal/model"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, d *Deps) {
	hdl := handler.NewAdminHandler(d.Admin)

	// Admin Routes (Kelola Admin Desa)
	admin := app.Group("/api/admin/users", middleware.Auth(d.Auth), middleware.Role(model.RoleAdminKecamatan))
	admin.Get("/", hdl.GetUsers)
	admin.Post("/", hdl.CreateUser)
	admin.Delete("/:id", hdl.DeleteUser)
}
