package entity

import "time"

// Project is a construction object requests are raised against.
type Project struct {
	ID             string     `json:"id" gorm:"primaryKey;size:32"`
	Name           string     `json:"name" gorm:"size:200;not null;index"`
	OrganizationID *string    `json:"organization_id" gorm:"size:32;index"`
	Address        string     `json:"address" gorm:"size:500"`
	Status         string     `json:"status" gorm:"size:20;default:active"` // active/suspended/closed
	StartDate      *time.Time `json:"start_date"`
	CreatedBy      string     `json:"created_by" gorm:"size:32"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Warehouses []Warehouse `json:"warehouses,omitempty" gorm:"foreignKey:ProjectID"`
}

func (Project) TableName() string {
	return "projects"
}

const (
	ProjectStatusActive    = "active"
	ProjectStatusSuspended = "suspended"
	ProjectStatusClosed    = "closed"
)
