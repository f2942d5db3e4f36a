package repository

import (
	"context"
	"errors"
	"time"

	"github.com/altustroy/snab/internal/imports/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MappingRepository persists per-user column mapping overrides.
type MappingRepository struct {
	db *gorm.DB
}

func NewMappingRepository(db *gorm.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// Find returns the stored mapping for a user within a tenant, or nil when
// none has been saved yet.
func (r *MappingRepository) Find(ctx context.Context, userID, tenantID string) (*entity.ColumnMappingRecord, error) {
	var rec entity.ColumnMappingRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND tenant_id = ?", userID, tenantID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Save upserts the mapping as a full replacement of the previous blob.
func (r *MappingRepository) Save(ctx context.Context, userID, tenantID string, mapping entity.ColumnMapping) error {
	rec := entity.ColumnMappingRecord{
		ID:        uuid.New().String()[:32],
		UserID:    userID,
		TenantID:  tenantID,
		Mapping:   mapping,
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"mapping", "updated_at"}),
		}).
		Create(&rec).Error
}
