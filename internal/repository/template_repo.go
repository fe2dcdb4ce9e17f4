package repository

import (
	"errors"
	"time"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/models"

	"gorm.io/gorm"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(t *models.NotificationTemplate) error {
	return r.db.Create(t).Error
}

func (r *TemplateRepository) Save(t *models.NotificationTemplate) error {
	return r.db.Save(t).Error
}

// GetByID returns (nil, nil) for a missing template so callers can map
// absence to their own error.
func (r *TemplateRepository) GetByID(id uint) (*models.NotificationTemplate, error) {
	var t models.NotificationTemplate
	if err := r.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// GetByCode returns the template with the code regardless of active state,
// used by idempotent seeding. Missing is (nil, nil), not an error.
func (r *TemplateRepository) GetByCode(code string) (*models.NotificationTemplate, error) {
	var t models.NotificationTemplate
	if err := r.db.Where("code = ?", code).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// ListActiveByCode returns every active template with the code; the store
// picks the one visible to the requesting branch.
func (r *TemplateRepository) ListActiveByCode(code string) ([]models.NotificationTemplate, error) {
	var list []models.NotificationTemplate
	err := r.db.Where("code = ? AND is_active = ?", code, true).Find(&list).Error
	return list, err
}

func (r *TemplateRepository) ActiveCodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&models.NotificationTemplate{}).
		Where("code = ? AND is_active = ?", code, true).Count(&count).Error
	return count > 0, err
}

type TemplateFilter struct {
	Category   string
	ActiveOnly bool
	SystemOnly bool
	Limit      int
	Offset     int
}

func (r *TemplateRepository) List(f TemplateFilter) ([]models.NotificationTemplate, error) {
	var list []models.NotificationTemplate
	q := r.db.Order("code")
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if f.SystemOnly {
		q = q.Where("is_system = ?", true)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	err := q.Find(&list).Error
	return list, err
}

// MarkUsed bumps the usage counter and the last-used timestamp.
func (r *TemplateRepository) MarkUsed(id uint) error {
	return r.db.Model(&models.NotificationTemplate{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"usage_count":  gorm.Expr("usage_count + 1"),
			"last_used_at": time.Now().UTC(),
		}).Error
}
