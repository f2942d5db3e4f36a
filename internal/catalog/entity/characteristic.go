package entity

import "time"

// Characteristic is a free-form material attribute (марка, сорт, размер).
type Characteristic struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:300;not null;uniqueIndex"`
	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Characteristic) TableName() string {
	return "characteristics"
}
