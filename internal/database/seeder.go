package database

import (
	"context"
	_ "embed"
	"os"
	"strings"

	"perangkat-desa-backend/internal/model"
	"perangkat-desa-backend/internal/repository"
	"perangkat-desa-backend/internal/usecase"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed seed.yaml
var defaultSeed []byte

type SeedAdmin struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Nama     string `yaml:"nama"`
}

type Seed struct {
	Admin        SeedAdmin          `yaml:"admin"`
	UploadConfig model.UploadConfig `yaml:"uploadConfig"`
	ExportConfig model.ExportConfig `yaml:"exportConfig"`
	Branding     model.Branding     `yaml:"branding"`
}

// LoadSeed membaca file seed; path kosong berarti memakai seed bawaan.
func LoadSeed(path string) (*Seed, error) {
	raw := defaultSeed
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "gagal membaca file seed %s", path)
		}
		raw = data
	}

	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, errors.Wrap(err, "format file seed tidak valid")
	}
	return &seed, nil
}

// SeedAll mengisi akun admin kecamatan pertama dan pengaturan awal. Aman
// dijalankan berulang: data yang sudah ada tidak ditimpa.
func SeedAll(ctx context.Context, db *gorm.DB, seed *Seed, kecamatan string, log *logrus.Logger) error {
	akunRepo := repository.NewAkunRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	settings := usecase.NewSettingUsecase(settingRepo, kecamatan)

	// 1. Seed Akun Admin Kecamatan
	email := strings.ToLower(strings.TrimSpace(seed.Admin.Email))
	if email != "" {
		_, err := akunRepo.FindByEmail(ctx, email)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			hashed, err := usecase.HashPassword(seed.Admin.Password)
			if err != nil {
				return err
			}
			akun := &model.Akun{Email: email, Password: hashed}
			profil := &model.Profil{Nama: seed.Admin.Nama, Role: model.RoleAdminKecamatan}
			if err := akunRepo.CreateWithProfil(ctx, akun, profil); err != nil {
				return errors.Wrap(err, "gagal membuat admin kecamatan")
			}
			log.WithField("email", email).Info("Admin kecamatan dibuat")
		case err != nil:
			return errors.Wrap(err, "gagal memeriksa admin kecamatan")
		default:
			log.WithField("email", email).Info("Admin kecamatan sudah ada, dilewati")
		}
	}

	// 2. Seed Pengaturan (hanya jika belum pernah disimpan)
	if len(seed.UploadConfig) > 0 {
		if ok, err := missing(ctx, settingRepo, model.SettingUpload); err != nil {
			return err
		} else if ok {
			if err := settings.SaveUploadConfig(ctx, seed.UploadConfig); err != nil {
				return err
			}
			log.Info("Pengaturan upload Excel diisi")
		}
	}

	if ok, err := missing(ctx, settingRepo, model.SettingExport); err != nil {
		return err
	} else if ok {
		if err := settings.SaveExportConfig(ctx, seed.ExportConfig); err != nil {
			return err
		}
		log.Info("Pengaturan export diisi")
	}

	if ok, err := missing(ctx, settingRepo, model.SettingBranding); err != nil {
		return err
	} else if ok {
		if err := settings.SaveBranding(ctx, seed.Branding); err != nil {
			return err
		}
		log.Info("Branding diisi")
	}

	return nil
}

func missing(ctx context.Context, repo repository.SettingRepository, key string) (bool, error) {
	var raw map[string]interface{}
	found, err := repo.Get(ctx, key, &raw)
	if err != nil {
		return false, errors.Wrapf(err, "gagal membaca pengaturan %s", key)
	}
	return !found, nil
}
