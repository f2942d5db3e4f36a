package entity

import "time"

// Organization is the customer-side legal entity a request document belongs to.
// Spreadsheets reference it by any of its name forms, so all three are kept.
type Organization struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:200;not null"`
	ShortName string    `json:"short_name" gorm:"size:100"`
	LegalName string    `json:"legal_name" gorm:"size:300"`
	INN       string    `json:"inn" gorm:"size:12;index"`
	KPP       string    `json:"kpp" gorm:"size:9"`
	Address   string    `json:"address" gorm:"size:500"`
	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Organization) TableName() string {
	return "organizations"
}
