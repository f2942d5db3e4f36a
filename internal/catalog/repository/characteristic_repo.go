package repository

import (
	"context"

	"github.com/altustroy/snab/internal/catalog/entity"
	"gorm.io/gorm"
)

// CharacteristicRepository stores the characteristic reference catalog.
type CharacteristicRepository struct {
	db *gorm.DB
}

func NewCharacteristicRepository(db *gorm.DB) *CharacteristicRepository {
	return &CharacteristicRepository{db: db}
}

func (r *CharacteristicRepository) FindAll(ctx context.Context) ([]entity.Characteristic, error) {
	var items []entity.Characteristic
	err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error
	return items, err
}

func (r *CharacteristicRepository) Create(ctx context.Context, ch *entity.Characteristic) error {
	return r.db.WithContext(ctx).Create(ch).Error
}

func (r *CharacteristicRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Characteristic{}).Error
}
