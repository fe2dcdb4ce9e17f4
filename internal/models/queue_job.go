package models

import (
	"time"
)

// QueueJob is one pending (channel, recipient) delivery unit. Jobs are claimed
// by the worker with a conditional update, retried with linear backoff up to
// MaxAttempts, and kept after terminal states for diagnostics.
type QueueJob struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	NotificationID      uint       `gorm:"not null;index" json:"notification_id"`
	RecipientID         uint       `gorm:"not null;index" json:"recipient_id"` // notification_recipients.id
	UserID              uint       `gorm:"not null;index" json:"user_id"`
	Channel             string     `gorm:"size:16;not null;index" json:"channel"`
	Priority            string     `gorm:"size:16;not null" json:"priority"`
	Title               string     `gorm:"size:512" json:"title"`
	Message             string     `gorm:"type:text" json:"message"`
	Payload             string     `gorm:"type:text" json:"payload"` // JSON object passed to the adapter
	ScheduledFor        time.Time  `gorm:"not null;index" json:"scheduled_for"`
	Attempts            int        `gorm:"default:0" json:"attempts"`
	MaxAttempts         int        `gorm:"default:3" json:"max_attempts"`
	Status              string     `gorm:"size:16;not null;index" json:"status"` // SCHEDULED | DELIVERED | FAILED | CANCELLED
	LastError           string     `gorm:"size:1024" json:"last_error"`
	ProcessingStartedAt *time.Time `json:"processing_started_at"`
	ProcessedAt         *time.Time `json:"processed_at"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (QueueJob) TableName() string {
	return "notification_queue"
}
