package repository

import (
	"context"
	"errors"

	"github.com/altustroy/snab/internal/catalog/entity"
	"gorm.io/gorm"
)

// MaterialRepository stores the material catalog.
type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// FindAll returns every material. The diff builder needs the whole catalog
// snapshot; paging happens only on the list endpoint.
func (r *MaterialRepository) FindAll(ctx context.Context) ([]entity.Material, error) {
	var items []entity.Material
	err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error
	return items, err
}

// List returns a page of materials with optional name search.
func (r *MaterialRepository) List(ctx context.Context, page, pageSize int, search string) ([]entity.Material, int64, error) {
	var items []entity.Material
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Material{})
	if search != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Unit").
		Order("name ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*entity.Material, error) {
	var m entity.Material
	err := r.db.WithContext(ctx).Preload("Unit").Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MaterialRepository) Create(ctx context.Context, m *entity.Material) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MaterialRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Material{}).Error
}
