package config

import (
	"perangkat-desa-backend/internal/model"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// ConnectDB membuka koneksi sesuai DB_DRIVER lalu menjalankan AutoMigrate.
func ConnectDB(opts DatabaseOptions) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "postgres":
		dialector = postgres.New(postgres.Config{
			DSN:                  opts.DSN,
			PreferSimpleProtocol: true,
		})
	case "sqlite":
		dialector = sqlite.Open(opts.DSN)
	default:
		dialector = mysql.Open(opts.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "gagal koneksi ke database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate membuat tabel otomatis berdasarkan struct di folder model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Perangkat{},
		&model.Akun{},
		&model.Profil{},
		&model.RevokedToken{},
		&model.Setting{},
	)
	return errors.Wrap(err, "gagal migrasi database")
}
