package repository

import (
	"context"

	"github.com/altustroy/snab/internal/catalog/entity"
	"gorm.io/gorm"
)

// WorkTypeRepository stores the work type reference catalog.
type WorkTypeRepository struct {
	db *gorm.DB
}

func NewWorkTypeRepository(db *gorm.DB) *WorkTypeRepository {
	return &WorkTypeRepository{db: db}
}

func (r *WorkTypeRepository) FindAll(ctx context.Context) ([]entity.WorkType, error) {
	var items []entity.WorkType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error
	return items, err
}

func (r *WorkTypeRepository) Create(ctx context.Context, wt *entity.WorkType) error {
	return r.db.WithContext(ctx).Create(wt).Error
}

func (r *WorkTypeRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.WorkType{}).Error
}
