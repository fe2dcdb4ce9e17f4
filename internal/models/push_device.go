package models

import (
	"time"
)

// PushDevice is one registered FCM token. A user can hold several (phone,
// tablet); stale tokens are pruned when FCM reports them unregistered.
type PushDevice struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Token      string    `gorm:"uniqueIndex;size:512;not null" json:"token"`
	DeviceType string    `gorm:"size:16" json:"device_type"` // android | ios | web
	AppVersion string    `gorm:"size:32" json:"app_version"`
	LastSeenAt time.Time `json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (PushDevice) TableName() string {
	return "push_devices"
}
