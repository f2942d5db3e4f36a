package entity

import "time"

// Warehouse always belongs to a project; creating one requires the project id.
type Warehouse struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:200;not null;index"`
	ProjectID string    `json:"project_id" gorm:"size:32;not null;index"`
	Address   string    `json:"address" gorm:"size:500"`
	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

func (Warehouse) TableName() string {
	return "warehouses"
}
