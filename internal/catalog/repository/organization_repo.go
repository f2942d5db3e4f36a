package repository

import (
	"context"
	"errors"

	"github.com/altustroy/snab/internal/catalog/entity"
	"gorm.io/gorm"
)

// OrganizationRepository stores customer legal entities.
type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// FindAll returns the full organization catalog; it is small enough to
// snapshot whole for name matching.
func (r *OrganizationRepository) FindAll(ctx context.Context) ([]entity.Organization, error) {
	var items []entity.Organization
	err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error
	return items, err
}

func (r *OrganizationRepository) FindByID(ctx context.Context, id string) (*entity.Organization, error) {
	var org entity.Organization
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) Create(ctx context.Context, org *entity.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}
