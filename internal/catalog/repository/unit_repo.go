package repository

import (
	"context"

	"github.com/altustroy/snab/internal/catalog/entity"
	"gorm.io/gorm"
)

// UnitRepository stores units of measure.
type UnitRepository struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

func (r *UnitRepository) FindAll(ctx context.Context) ([]entity.Unit, error) {
	var items []entity.Unit
	err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error
	return items, err
}

func (r *UnitRepository) Create(ctx context.Context, u *entity.Unit) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UnitRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Unit{}).Error
}
