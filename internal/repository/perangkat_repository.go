package repository

import (
	"context"
	"strings"

	"perangkat-desa-backend/internal/model"

	"gorm.io/gorm"
)

// PerangkatFilter membatasi query list. Desa kosong atau "all" berarti semua desa.
type PerangkatFilter struct {
	Desa   string
	Search string
}

func (f PerangkatFilter) desaScoped() bool {
	return f.Desa != "" && !strings.EqualFold(f.Desa, "all")
}

type PerangkatRepository interface {
	FindAll(ctx context.Context, filter PerangkatFilter) ([]model.Perangkat, error)
	FindByID(ctx context.Context, id uint) (*model.Perangkat, error)
	Create(ctx context.Context, p *model.Perangkat) error
	Update(ctx context.Context, p *model.Perangkat) error
	Delete(ctx context.Context, id uint) error
	CreateBatch(ctx context.Context, items []model.Perangkat) error
	CountByDesa(ctx context.Context) (map[string]int64, error)
}

type perangkatRepository struct {
	db *gorm.DB
}

func NewPerangkatRepository(db *gorm.DB) PerangkatRepository {
	return &perangkatRepository{db}
}

func (r *perangkatRepository) FindAll(ctx context.Context, filter PerangkatFilter) ([]model.Perangkat, error) {
	var items []model.Perangkat
	query := r.db.WithContext(ctx).Model(&model.Perangkat{})

	if filter.desaScoped() {
		query = query.Where("desa = ?", filter.Desa)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(nama) LIKE ? OR nip LIKE ? OR nik LIKE ?", searchPattern, "%"+search+"%", "%"+search+"%")
	}

	// Urutan kedatangan, sama seperti snapshot live.
	err := query.Order("id ASC").Find(&items).Error
	return items, err
}

func (r *perangkatRepository) FindByID(ctx context.Context, id uint) (*model.Perangkat, error) {
	var p model.Perangkat
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *perangkatRepository) Create(ctx context.Context, p *model.Perangkat) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *perangkatRepository) Update(ctx context.Context, p *model.Perangkat) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *perangkatRepository) Delete(ctx context.Context, id uint) error {
	// Hapus permanen, tidak ada soft delete untuk data perangkat
	res := r.db.WithContext(ctx).Unscoped().Delete(&model.Perangkat{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateBatch menyimpan semua record dalam satu transaksi: semua masuk atau tidak sama sekali.
func (r *perangkatRepository) CreateBatch(ctx context.Context, items []model.Perangkat) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&items, 100).Error
	})
}

func (r *perangkatRepository) CountByDesa(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Desa  string
		Total int64
	}
	err := r.db.WithContext(ctx).Model(&model.Perangkat{}).
		Select("desa, COUNT(*) as total").
		Group("desa").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Desa] = row.Total
	}
	return counts, nil
}
