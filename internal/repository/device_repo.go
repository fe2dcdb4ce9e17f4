package repository

import (
	"time"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// Upsert registers a device token. A token moving between accounts (shared
// tablet, reinstall) is reassigned to the new user.
func (r *DeviceRepository) Upsert(d *models.PushDevice) error {
	d.LastSeenAt = time.Now().UTC()
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "device_type", "app_version", "last_seen_at",
		}),
	}).Create(d).Error
}

func (r *DeviceRepository) DeleteByToken(userID uint, token string) error {
	return r.db.Where("user_id = ? AND token = ?", userID, token).
		Delete(&models.PushDevice{}).Error
}

// DeleteToken removes a token regardless of owner, used when FCM reports it
// unregistered.
func (r *DeviceRepository) DeleteToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&models.PushDevice{}).Error
}

func (r *DeviceRepository) TokensForUser(userID uint) ([]string, error) {
	var tokens []string
	err := r.db.Model(&models.PushDevice{}).
		Where("user_id = ?", userID).Pluck("token", &tokens).Error
	return tokens, err
}
