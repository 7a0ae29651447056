package routes

import (
	"perangkat-desa-backend/internal/handler"
	"perangkat-desa-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

const loginAttemptsPerMinute = 10

func SetupAuthRoutes(app *fiber.App, d *Deps) {
	hdl := handler.NewAuthHandler(d.Auth)

	app.Post("/api/login", middleware.LoginRateLimiter(loginAttemptsPerMinute), hdl.Login)

	// Jangan pakai Group("/api", Auth): middleware group ikut menutup route publik
	app.Post("/api/logout", middleware.Auth(d.Auth), hdl.Logout)
	app.Get("/api/me", middleware.Auth(d.Auth), hdl.Me)
}
