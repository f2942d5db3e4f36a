package entity

import "time"

// WorkType classifies a request line item (земляные работы, отделка, ...).
type WorkType struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:200;not null;uniqueIndex"`
	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WorkType) TableName() string {
	return "work_types"
}
