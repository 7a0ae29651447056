package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"perangkat-desa-backend/config"
	"perangkat-desa-backend/internal/mailer"
	"perangkat-desa-backend/internal/routes"
	"perangkat-desa-backend/internal/storage"

	"github.com/sirupsen/logrus"
)

const purgeInterval = time.Hour

func main() {
	// 1. Load konfigurasi (.env + environment)
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Konfigurasi tidak valid")
	}
	log := cfg.NewLogger()

	// 2. Koneksi ke Database
	log.WithField("driver", cfg.Database.Driver).Info("Mencoba koneksi ke Database...")
	db, err := config.ConnectDB(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Gagal koneksi ke database")
	}
	log.Info("Database berhasil terhubung! Menyiapkan routes...")

	// 3. Rakit dependency dan jalankan hub live
	d := routes.NewDeps(db, cfg, log, mailer.New(cfg.SMTP), storage.NewImageHost(cfg, log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go d.Hub.Run(ctx)
	go purgeRevokedTokens(ctx, d)

	app := routes.NewApp(d)

	go func() {
		<-ctx.Done()
		log.Info("Server berhenti, menutup koneksi...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Gagal shutdown server")
		}
	}()

	// 4. Server siap
	log.Infof("Server siap! Menunggu request di port :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Server berhenti dengan error")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server selesai")
}

// purgeRevokedTokens membersihkan tabel token dicabut secara berkala.
func purgeRevokedTokens(ctx context.Context, d *routes.Deps) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Auth.PurgeRevoked(ctx)
		}
	}
}
