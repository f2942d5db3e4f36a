package repository

import (
	"context"
	"errors"

	"github.com/altustroy/snab/internal/catalog/entity"
	"gorm.io/gorm"
)

// WarehouseRepository stores project warehouses.
type WarehouseRepository struct {
	db *gorm.DB
}

func NewWarehouseRepository(db *gorm.DB) *WarehouseRepository {
	return &WarehouseRepository{db: db}
}

func (r *WarehouseRepository) FindAll(ctx context.Context) ([]entity.Warehouse, error) {
	var items []entity.Warehouse
	err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error
	return items, err
}

// FindByProject lists warehouses belonging to one project.
func (r *WarehouseRepository) FindByProject(ctx context.Context, projectID string) ([]entity.Warehouse, error) {
	var items []entity.Warehouse
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("name ASC").Find(&items).Error
	return items, err
}

func (r *WarehouseRepository) FindByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	var w entity.Warehouse
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *WarehouseRepository) Create(ctx context.Context, w *entity.Warehouse) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *WarehouseRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Warehouse{}).Error
}
