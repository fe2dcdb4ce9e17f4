package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// NotificationTemplate is a reusable message pattern. Code is unique among
// active templates (enforced by the store, not the schema, so a deactivated
// code can be reused). System templates come from the seed catalog and only
// accept the fixed set of updates SeedDefaults applies.
type NotificationTemplate struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Code            string         `gorm:"size:64;not null;index" json:"code"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	TitleTemplate   string         `gorm:"size:512;not null" json:"title_template"`
	BodyTemplate    string         `gorm:"type:text;not null" json:"body_template"`
	Category        string         `gorm:"size:32;not null;index" json:"category"`
	DefaultPriority string         `gorm:"size:16;not null" json:"default_priority"`
	DefaultChannels string         `gorm:"size:255" json:"default_channels"` // JSON array of channel names
	Variables       string         `gorm:"size:512" json:"variables"`        // JSON array of placeholder names, informational
	BranchIDs       string         `gorm:"size:512" json:"branch_ids"`       // JSON array; empty or [] means global
	IsSystem        bool           `gorm:"default:false;index" json:"is_system"`
	IsActive        bool           `gorm:"default:true;index" json:"is_active"`
	UsageCount      int64          `gorm:"default:0" json:"usage_count"`
	LastUsedAt      *time.Time     `json:"last_used_at"`
	CreatedBy       uint           `json:"created_by"` // 0 for seeded templates
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (NotificationTemplate) TableName() string {
	return "notification_templates"
}

func (t *NotificationTemplate) ChannelList() []string {
	return DecodeStringList(t.DefaultChannels)
}

func (t *NotificationTemplate) SetChannelList(channels []string) {
	t.DefaultChannels = EncodeStringList(channels)
}

func (t *NotificationTemplate) BranchList() []uint {
	if t.BranchIDs == "" {
		return nil
	}
	var ids []uint
	_ = json.Unmarshal([]byte(t.BranchIDs), &ids)
	return ids
}

func (t *NotificationTemplate) SetBranchList(ids []uint) {
	if len(ids) == 0 {
		t.BranchIDs = ""
		return
	}
	b, _ := json.Marshal(ids)
	t.BranchIDs = string(b)
}

// ScopedTo reports whether the template is visible from the branch. A
// template with no branch list is global; branch 0 is the unrestricted scope
// and sees everything.
func (t *NotificationTemplate) ScopedTo(branchID uint) bool {
	ids := t.BranchList()
	if branchID == 0 || len(ids) == 0 {
		return true
	}
	for _, id := range ids {
		if id == branchID {
			return true
		}
	}
	return false
}

// DecodeStringList unmarshals a JSON string array stored in a text column;
// malformed or empty input decodes to nil.
func DecodeStringList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

func EncodeStringList(list []string) string {
	if len(list) == 0 {
		return ""
	}
	b, _ := json.Marshal(list)
	return string(b)
}
