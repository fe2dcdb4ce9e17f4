package models

import (
	"encoding/json"
	"time"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"
)

// Notification is one logical message event. It is created atomically with its
// recipient fan-out and never deleted; delivery-status updates only bump the
// aggregate counters.
type Notification struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Code            string     `gorm:"uniqueIndex;size:64;not null" json:"code"`
	TemplateID      *uint      `gorm:"index" json:"template_id"`
	Title           string     `gorm:"size:512;not null" json:"title"`
	Message         string     `gorm:"type:text;not null" json:"message"`
	Category        string     `gorm:"size:32;not null;index" json:"category"`
	Priority        string     `gorm:"size:16;not null" json:"priority"`
	SenderID        uint       `gorm:"index" json:"sender_id"`
	SenderName      string     `gorm:"size:255" json:"sender_name"`
	SenderRole      string     `gorm:"size:20" json:"sender_role"`
	BranchID        *uint      `gorm:"index" json:"branch_id"` // nil means all branches
	RecipientSpec   string     `gorm:"size:1024" json:"recipient_spec"` // JSON of the original spec, for audit
	Channels        string     `gorm:"size:255" json:"channels"`        // JSON array of requested channels
	Status          string     `gorm:"size:16;not null;index" json:"status"` // SCHEDULED | SENT
	ScheduledFor    *time.Time `json:"scheduled_for"`
	ActionURL       string     `gorm:"size:512" json:"action_url"`
	ActionText      string     `gorm:"size:64" json:"action_text"`
	Attachments     string     `gorm:"size:2048" json:"attachments"` // JSON array of URLs
	Metadata        string     `gorm:"type:text" json:"metadata"`    // JSON object
	TotalRecipients int        `gorm:"default:0" json:"total_recipients"`
	DeliveredCount  int        `gorm:"default:0" json:"delivered_count"`
	ReadCount       int        `gorm:"default:0" json:"read_count"`
	FailedCount     int        `gorm:"default:0" json:"failed_count"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) ChannelList() []string {
	return DecodeStringList(n.Channels)
}

func (n *Notification) SetChannelList(channels []string) {
	n.Channels = EncodeStringList(channels)
}

func (n *Notification) SetMetadata(m map[string]string) {
	if len(m) == 0 {
		n.Metadata = ""
		return
	}
	b, _ := json.Marshal(m)
	n.Metadata = string(b)
}

// NotificationRecipient snapshots the target user at send time so later
// profile changes do not rewrite delivery history. One status column per
// channel; NOT_APPLICABLE when the channel was not selected for this
// recipient.
type NotificationRecipient struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	NotificationID uint       `gorm:"not null;index" json:"notification_id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	UserName       string     `gorm:"size:255" json:"user_name"`
	UserRole       string     `gorm:"size:20" json:"user_role"`
	Email          string     `gorm:"size:255" json:"email"`
	Phone          string     `gorm:"size:32" json:"phone"`
	BranchID       uint       `json:"branch_id"`
	InAppStatus    string     `gorm:"size:16;not null;default:NOT_APPLICABLE" json:"in_app_status"`
	EmailStatus    string     `gorm:"size:16;not null;default:NOT_APPLICABLE" json:"email_status"`
	SMSStatus      string     `gorm:"size:16;not null;default:NOT_APPLICABLE" json:"sms_status"`
	PushStatus     string     `gorm:"size:16;not null;default:NOT_APPLICABLE" json:"push_status"`
	ReadAt         *time.Time `json:"read_at"`
	ClickedAt      *time.Time `json:"clicked_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Notification *Notification `gorm:"foreignKey:NotificationID" json:"-"`
}

func (NotificationRecipient) TableName() string {
	return "notification_recipients"
}

// ChannelStatus returns the status column for the given channel.
func (r *NotificationRecipient) ChannelStatus(channel string) string {
	switch channel {
	case domain.ChannelInApp:
		return r.InAppStatus
	case domain.ChannelEmail:
		return r.EmailStatus
	case domain.ChannelSMS:
		return r.SMSStatus
	case domain.ChannelPush:
		return r.PushStatus
	}
	return domain.DeliveryNotApplicable
}

func (r *NotificationRecipient) SetChannelStatus(channel, status string) {
	switch channel {
	case domain.ChannelInApp:
		r.InAppStatus = status
	case domain.ChannelEmail:
		r.EmailStatus = status
	case domain.ChannelSMS:
		r.SMSStatus = status
	case domain.ChannelPush:
		r.PushStatus = status
	}
}

// ChannelStatusColumn maps a channel name to its database column, shared by
// the repositories so status updates stay consistent.
func ChannelStatusColumn(channel string) string {
	switch channel {
	case domain.ChannelInApp:
		return "in_app_status"
	case domain.ChannelEmail:
		return "email_status"
	case domain.ChannelSMS:
		return "sms_status"
	case domain.ChannelPush:
		return "push_status"
	}
	return ""
}
