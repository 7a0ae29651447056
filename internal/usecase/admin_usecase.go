package usecase

import (
	"context"
	"strings"

	"perangkat-desa-backend/internal/apperror"
	"perangkat-desa-backend/internal/mailer"
	"perangkat-desa-backend/internal/model"
	"perangkat-desa-backend/internal/repository"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CreateAdminDesaInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Nama     string `json:"nama" validate:"required"`
	Desa     string `json:"desa" validate:"required"`
}

// AdminUsecase mengelola akun admin desa. Semua operasi hanya untuk admin kecamatan.
type AdminUsecase struct {
	repo     repository.AkunRepository
	notifier mailer.Notifier
	appURL   string
	log      *logrus.Logger
}

func NewAdminUsecase(repo repository.AkunRepository, notifier mailer.Notifier, appURL string, log *logrus.Logger) *AdminUsecase {
	return &AdminUsecase{repo: repo, notifier: notifier, appURL: appURL, log: log}
}

func (u *AdminUsecase) ListUsers(ctx context.Context, s model.Session) ([]model.Akun, error) {
	if !s.IsKecamatan() {
		return nil, apperror.Forbidden("Akses ditolak: hanya admin kecamatan")
	}
	akuns, err := u.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "gagal mengambil daftar user", err)
	}
	return akuns, nil
}

func (u *AdminUsecase) CreateAdminDesa(ctx context.Context, s model.Session, in CreateAdminDesaInput) (*model.Akun, error) {
	if !s.IsKecamatan() {
		return nil, apperror.Forbidden("Akses ditolak: hanya admin kecamatan")
	}

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Nama = strings.TrimSpace(in.Nama)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	// 1. Desa harus salah satu desa di kecamatan
	desa, ok := model.CanonicalDesa(in.Desa)
	if !ok {
		return nil, apperror.Validation("Validasi gagal", map[string]string{"desa": "desa tidak dikenal"})
	}

	// 2. Email harus unik
	_, err := u.repo.FindByEmail(ctx, in.Email)
	if err == nil {
		return nil, apperror.Conflict("Email sudah terdaftar")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Wrap(apperror.KindInternal, "gagal memeriksa email", err)
	}

	// 3. Simpan akun + profil
	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "gagal memproses password", err)
	}
	akun := &model.Akun{Email: in.Email, Password: hashed}
	profil := &model.Profil{Nama: in.Nama, Role: model.RoleAdminDesa, Desa: desa}
	if err := u.repo.CreateWithProfil(ctx, akun, profil); err != nil {
		return nil, apperror.Store("Gagal membuat akun admin desa", err)
	}

	// 4. Notifikasi email tidak boleh menggagalkan pembuatan akun
	if err := u.notifier.AkunDibuat(akun.Email, profil.Nama, desa, u.appURL); err != nil {
		u.log.WithError(err).WithField("email", akun.Email).Warn("Gagal mengirim email akun baru")
	}

	u.log.WithFields(logrus.Fields{"email": akun.Email, "desa": desa}).Info("Admin desa dibuat")
	return akun, nil
}

func (u *AdminUsecase) DeleteUser(ctx context.Context, s model.Session, id uint) error {
	if !s.IsKecamatan() {
		return apperror.Forbidden("Akses ditolak: hanya admin kecamatan")
	}
	if id == s.ID {
		return apperror.Invalid("Tidak dapat menghapus akun sendiri")
	}
	err := u.repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("User tidak ditemukan")
	}
	if err != nil {
		return apperror.Store("Gagal menghapus user", err)
	}
	return nil
}
