package usecase

import (
	"context"
	"strings"

	"perangkat-desa-backend/internal/apperror"
	"perangkat-desa-backend/internal/model"
	"perangkat-desa-backend/internal/repository"
)

// SettingUsecase membaca dan menyimpan dokumen pengaturan aplikasi.
type SettingUsecase struct {
	repo      repository.SettingRepository
	kecamatan string
}

func NewSettingUsecase(repo repository.SettingRepository, kecamatan string) *SettingUsecase {
	return &SettingUsecase{repo: repo, kecamatan: kecamatan}
}

// ExportConfig mengembalikan pengaturan tanda tangan apa adanya (boleh kosong).
func (u *SettingUsecase) ExportConfig(ctx context.Context) (model.ExportConfig, error) {
	var cfg model.ExportConfig
	if _, err := u.repo.Get(ctx, model.SettingExport, &cfg); err != nil {
		return cfg, apperror.Wrap(apperror.KindInternal, "gagal memuat pengaturan export", err)
	}
	return cfg, nil
}

func (u *SettingUsecase) SaveExportConfig(ctx context.Context, cfg model.ExportConfig) error {
	cfg.NamaPenandaTangan = strings.TrimSpace(cfg.NamaPenandaTangan)
	cfg.JabatanPenandaTangan = strings.TrimSpace(cfg.JabatanPenandaTangan)
	cfg.PangkatPenandaTangan = strings.TrimSpace(cfg.PangkatPenandaTangan)
	cfg.NIPPenandaTangan = strings.TrimSpace(cfg.NIPPenandaTangan)
	if err := u.repo.Put(ctx, model.SettingExport, cfg); err != nil {
		return apperror.Store("Gagal menyimpan pengaturan export", err)
	}
	return nil
}

// UploadConfig mengembalikan nil jika pengaturan upload belum pernah disimpan.
func (u *SettingUsecase) UploadConfig(ctx context.Context) (model.UploadConfig, error) {
	var cfg model.UploadConfig
	found, err := u.repo.Get(ctx, model.SettingUpload, &cfg)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "gagal memuat pengaturan upload", err)
	}
	if !found {
		return nil, nil
	}
	return cfg, nil
}

func (u *SettingUsecase) SaveUploadConfig(ctx context.Context, cfg model.UploadConfig) error {
	cleaned := make(model.UploadConfig, len(cfg))
	for k, v := range cfg {
		if v = strings.TrimSpace(v); v != "" {
			cleaned[strings.TrimSpace(k)] = v
		}
	}
	if err := cleaned.Validate(); err != nil {
		return apperror.Invalid(err.Error())
	}
	if err := u.repo.Put(ctx, model.SettingUpload, cleaned); err != nil {
		return apperror.Store("Gagal menyimpan pengaturan upload", err)
	}
	return nil
}

func (u *SettingUsecase) Branding(ctx context.Context) (model.Branding, error) {
	var b model.Branding
	if _, err := u.repo.Get(ctx, model.SettingBranding, &b); err != nil {
		return b, apperror.Wrap(apperror.KindInternal, "gagal memuat branding", err)
	}
	if b.AppName == "" {
		b.AppName = "Perangkat Desa " + u.kecamatan
	}
	if b.LoginTitle == "" {
		b.LoginTitle = "Kecamatan " + u.kecamatan
	}
	return b, nil
}

func (u *SettingUsecase) SaveBranding(ctx context.Context, b model.Branding) error {
	if err := u.repo.Put(ctx, model.SettingBranding, b); err != nil {
		return apperror.Store("Gagal menyimpan branding", err)
	}
	return nil
}
