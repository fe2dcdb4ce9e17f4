package models

import (
	"time"

	"gorm.io/gorm"
)

// Branch is the tenant unit: every non-superadmin user and every branch-scoped
// template belongs to exactly one branch.
type Branch struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Address   string         `gorm:"size:512" json:"address"`
	Phone     string         `gorm:"size:32" json:"phone"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Branch) TableName() string {
	return "branches"
}
