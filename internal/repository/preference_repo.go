package repository

import (
	"errors"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetOrDefault never fails on a missing record: users without a stored
// preference get the all-enabled default.
func (r *PreferenceRepository) GetOrDefault(userID uint) (*models.NotificationPreference, error) {
	var p models.NotificationPreference
	err := r.db.Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DefaultPreference(userID), nil
		}
		return nil, err
	}
	return &p, nil
}

// Upsert inserts or replaces a user's preference record by user id.
func (r *PreferenceRepository) Upsert(p *models.NotificationPreference) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"in_app_enabled", "email_enabled", "sms_enabled", "push_enabled",
			"categories", "quiet_hours_start", "quiet_hours_end", "digest_enabled",
		}),
	}).Create(p).Error
}
