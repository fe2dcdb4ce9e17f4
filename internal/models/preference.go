package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"
)

// NotificationPreference is a per-user opt-in/out record. A user with no
// record gets DefaultPreference (everything enabled) — absence must never
// fail a send.
type NotificationPreference struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	InAppEnabled    bool      `gorm:"default:true" json:"in_app_enabled"`
	EmailEnabled    bool      `gorm:"default:true" json:"email_enabled"`
	SMSEnabled      bool      `gorm:"default:true" json:"sms_enabled"`
	PushEnabled     bool      `gorm:"default:true" json:"push_enabled"`
	Categories      string    `gorm:"size:1024" json:"categories"` // JSON map category -> bool; missing key means enabled
	QuietHoursStart string    `gorm:"size:5" json:"quiet_hours_start"` // "22:00", empty disables quiet hours
	QuietHoursEnd   string    `gorm:"size:5" json:"quiet_hours_end"`
	DigestEnabled   bool      `gorm:"default:false" json:"digest_enabled"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (NotificationPreference) TableName() string {
	return "notification_preferences"
}

// DefaultPreference is the safe default applied when a user has no stored
// record: all channels and categories enabled, no quiet hours.
func DefaultPreference(userID uint) *NotificationPreference {
	return &NotificationPreference{
		UserID:       userID,
		InAppEnabled: true,
		EmailEnabled: true,
		SMSEnabled:   true,
		PushEnabled:  true,
	}
}

func (p *NotificationPreference) AllowsChannel(channel string) bool {
	switch channel {
	case domain.ChannelInApp:
		return p.InAppEnabled
	case domain.ChannelEmail:
		return p.EmailEnabled
	case domain.ChannelSMS:
		return p.SMSEnabled
	case domain.ChannelPush:
		return p.PushEnabled
	}
	return false
}

func (p *NotificationPreference) AllowsCategory(category string) bool {
	if p.Categories == "" {
		return true
	}
	var m map[string]bool
	if err := json.Unmarshal([]byte(p.Categories), &m); err != nil {
		return true
	}
	enabled, ok := m[category]
	if !ok {
		return true
	}
	return enabled
}

func (p *NotificationPreference) SetCategories(m map[string]bool) {
	if len(m) == 0 {
		p.Categories = ""
		return
	}
	b, _ := json.Marshal(m)
	p.Categories = string(b)
}

// InQuietHours reports whether t falls inside the user's quiet window.
// Windows may wrap midnight ("22:00"–"07:00").
func (p *NotificationPreference) InQuietHours(t time.Time) bool {
	start, okS := parseClock(p.QuietHoursStart)
	end, okE := parseClock(p.QuietHoursEnd)
	if !okS || !okE || start == end {
		return false
	}
	now := t.Hour()*60 + t.Minute()
	if start < end {
		return now >= start && now < end
	}
	return now >= start || now < end
}

func parseClock(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
