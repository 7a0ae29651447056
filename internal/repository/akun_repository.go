package repository

import (
	"context"
	"time"

	"perangkat-desa-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AkunRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.Akun, error)
	FindByID(ctx context.Context, id uint) (*model.Akun, error)
	FindProfil(ctx context.Context, akunID uint) (*model.Profil, error)
	FindAll(ctx context.Context) ([]model.Akun, error)
	CreateWithProfil(ctx context.Context, akun *model.Akun, profil *model.Profil) error
	Delete(ctx context.Context, id uint) error

	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

type akunRepository struct {
	db *gorm.DB
}

func NewAkunRepository(db *gorm.DB) AkunRepository {
	return &akunRepository{db}
}

func (r *akunRepository) FindByEmail(ctx context.Context, email string) (*model.Akun, error) {
	var akun model.Akun
	err := r.db.WithContext(ctx).Preload("Profil").Where("email = ?", email).First(&akun).Error
	return &akun, err
}

func (r *akunRepository) FindByID(ctx context.Context, id uint) (*model.Akun, error) {
	var akun model.Akun
	err := r.db.WithContext(ctx).Preload("Profil").First(&akun, id).Error
	return &akun, err
}

func (r *akunRepository) FindProfil(ctx context.Context, akunID uint) (*model.Profil, error) {
	var profil model.Profil
	err := r.db.WithContext(ctx).Where("akun_id = ?", akunID).First(&profil).Error
	return &profil, err
}

func (r *akunRepository) FindAll(ctx context.Context) ([]model.Akun, error) {
	var akuns []model.Akun
	err := r.db.WithContext(ctx).Preload("Profil").Order("id ASC").Find(&akuns).Error
	return akuns, err
}

// CreateWithProfil membuat akun dan profilnya dalam satu transaksi.
func (r *akunRepository) CreateWithProfil(ctx context.Context, akun *model.Akun, profil *model.Profil) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Profil").Create(akun).Error; err != nil {
			return err
		}
		profil.AkunID = akun.ID
		if err := tx.Create(profil).Error; err != nil {
			return err
		}
		akun.Profil = profil
		return nil
	})
}

func (r *akunRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("akun_id = ?", id).Delete(&model.Profil{}).Error; err != nil {
			return err
		}
		res := tx.Unscoped().Delete(&model.Akun{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *akunRepository) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	// Token yang sama boleh dicabut dua kali (logout ganda)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.RevokedToken{JTI: jti, ExpiresAt: expiresAt}).Error
}

func (r *akunRepository) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error
	return count > 0, err
}

func (r *akunRepository) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&model.RevokedToken{})
	return res.RowsAffected, res.Error
}
