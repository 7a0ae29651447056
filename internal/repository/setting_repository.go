package repository

import (
	"context"
	"encoding/json"

	"perangkat-desa-backend/internal/model"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	// Get mengisi out dengan isi setting key. found=false jika belum pernah disimpan.
	Get(ctx context.Context, key string, out interface{}) (found bool, err error)
	Put(ctx context.Context, key string, value interface{}) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db}
}

func (r *settingRepository) Get(ctx context.Context, key string, out interface{}) (bool, error) {
	var s model.Setting
	err := r.db.WithContext(ctx).Where(&model.Setting{Key: key}).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(s.Value) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(s.Value, out); err != nil {
		return true, errors.Wrapf(err, "setting %s rusak", key)
	}
	return true, nil
}

func (r *settingRepository) Put(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode setting %s", key)
	}
	s := model.Setting{Key: key, Value: datatypes.JSON(raw)}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&s).Error
}
