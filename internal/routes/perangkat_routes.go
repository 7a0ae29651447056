package routes

import (
	"perangkat-desa-backend/internal/handler"
	"perangkat-desa-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupPerangkatRoutes(app *fiber.App, d *Deps) {
	hdl := handler.NewPerangkatHandler(d.Perangkat, d.Uploader)
	live := handler.NewLiveHandler(d.Hub, d.Log)

	api := app.Group("/api/perangkat", middleware.Auth(d.Auth))
	api.Get("/live", live.Upgrade, live.Stream()) // Harus sebelum /:id
	api.Get("/", hdl.GetAll)
	api.Get("/:id", hdl.GetByID)
	api.Post("/", hdl.Create)
	api.Put("/:id", hdl.Update)
	api.Delete("/:id", hdl.Delete)
}
