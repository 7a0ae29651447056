package routes

import (
	"context"
	"strings"

	"perangkat-desa-backend/config"
	"perangkat-desa-backend/internal/helper"
	"perangkat-desa-backend/internal/hub"
	"perangkat-desa-backend/internal/mailer"
	"perangkat-desa-backend/internal/metrics"
	"perangkat-desa-backend/internal/middleware"
	"perangkat-desa-backend/internal/model"
	"perangkat-desa-backend/internal/repository"
	"perangkat-desa-backend/internal/storage"
	"perangkat-desa-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps adalah semua dependency yang dibagi oleh route.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Log    *logrus.Logger
	Hub    *hub.Hub

	Auth      *usecase.AuthUsecase
	Perangkat *usecase.PerangkatUsecase
	Admin     *usecase.AdminUsecase
	Settings  *usecase.SettingUsecase
	Uploader  *storage.Uploader
}

// NewDeps merakit repository, usecase dan hub. Hub belum berjalan; panggil
// d.Hub.Run di goroutine terpisah.
func NewDeps(db *gorm.DB, cfg *config.Config, log *logrus.Logger, notifier mailer.Notifier, host storage.ImageHost) *Deps {
	perangkatRepo := repository.NewPerangkatRepository(db)
	akunRepo := repository.NewAkunRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	settings := usecase.NewSettingUsecase(settingRepo, cfg.KecamatanName)

	// Hub dan usecase saling membutuhkan: hub memuat snapshot lewat usecase,
	// usecase memberi tahu hub setiap ada perubahan.
	var perangkat *usecase.PerangkatUsecase
	h := hub.New(func(ctx context.Context, scope string) ([]model.PerangkatView, error) {
		return perangkat.Snapshot(ctx, scope)
	}, log)
	perangkat = usecase.NewPerangkatUsecase(perangkatRepo, settings, h, log, cfg.KecamatanName)

	return &Deps{
		DB:        db,
		Config:    cfg,
		Log:       log,
		Hub:       h,
		Auth:      usecase.NewAuthUsecase(akunRepo, cfg.JWTSecret, cfg.JWTTTL, log),
		Perangkat: perangkat,
		Admin:     usecase.NewAdminUsecase(akunRepo, notifier, cfg.PublicBaseURL, log),
		Settings:  settings,
		Uploader:  storage.NewUploader(host, int64(cfg.MaxUploadSize)),
	}
}

// NewApp membuat fiber app lengkap dengan middleware global dan semua route.
func NewApp(d *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Perangkat Desa " + d.Config.KecamatanName,
		ErrorHandler: helper.ErrorHandler(d.Log),
		// Form perangkat membawa dua foto sekaligus
		BodyLimit: 2*d.Config.MaxUploadSize + 1024*1024,
	})

	// Middleware Global
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Config.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} | ${status} | ${latency} | ${method} ${path} | ${respHeader:X-Request-ID}\n",
	}))
	app.Use(metrics.Middleware())

	// Serve Static Files (fallback upload lokal tanpa Cloudinary)
	app.Static("/uploads", d.Config.UploadDir)

	app.Get("/health", healthCheck(d))
	app.Get("/metrics", metrics.Handler())

	SetupAuthRoutes(app, d)
	// Import/export didaftarkan sebelum /api/perangkat/:id
	SetupReportRoutes(app, d)
	SetupPerangkatRoutes(app, d)
	SetupDashboardRoutes(app, d)
	SetupAdminRoutes(app, d)
	SetupSettingRoutes(app, d)

	return app
}

func healthCheck(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			d.Log.WithError(err).Warn("Health check: database tidak merespon")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "database": "down"})
		}
		return c.JSON(fiber.Map{"status": "ok", "database": strings.ToLower(d.Config.Database.Driver)})
	}
}
