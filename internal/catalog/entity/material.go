package entity

import "time"

// Material is a procurement catalog item.
type Material struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:300;not null;index"`
	Code      string    `json:"code" gorm:"size:64;index"`
	UnitID    *string   `json:"unit_id" gorm:"size:32"`
	Category  string    `json:"category" gorm:"size:100"`
	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Unit *Unit `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
}

func (Material) TableName() string {
	return "materials"
}
