package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories is the catalog repository set.
type Repositories struct {
	Organization   *OrganizationRepository
	Project        *ProjectRepository
	Warehouse      *WarehouseRepository
	WorkType       *WorkTypeRepository
	Characteristic *CharacteristicRepository
	Unit           *UnitRepository
	Material       *MaterialRepository
}

// NewRepositories wires all catalog repositories onto one gorm handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Organization:   NewOrganizationRepository(db),
		Project:        NewProjectRepository(db),
		Warehouse:      NewWarehouseRepository(db),
		WorkType:       NewWorkTypeRepository(db),
		Characteristic: NewCharacteristicRepository(db),
		Unit:           NewUnitRepository(db),
		Material:       NewMaterialRepository(db),
	}
}
