package repository

import (
	"time"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/models"

	"gorm.io/gorm"
)

type QueueRepository struct {
	db *gorm.DB
}

func NewQueueRepository(db *gorm.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

// ClaimDue claims up to limit due jobs. Each claim is a conditional update
// (only if still scheduled and unclaimed) so two workers cannot take the same
// job; delivery stays at-least-once because a crash after claiming leaves the
// attempt counted but the job unfinished until its reschedule.
func (r *QueueRepository) ClaimDue(now time.Time, limit int) ([]models.QueueJob, error) {
	var ids []uint
	err := r.db.Model(&models.QueueJob{}).
		Where("status = ? AND scheduled_for <= ? AND attempts < max_attempts AND processing_started_at IS NULL",
			domain.JobScheduled, now).
		Order("scheduled_for").Limit(limit).Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	claimed := make([]uint, 0, len(ids))
	for _, id := range ids {
		res := r.db.Model(&models.QueueJob{}).
			Where("id = ? AND status = ? AND processing_started_at IS NULL", id, domain.JobScheduled).
			Updates(map[string]interface{}{
				"attempts":              gorm.Expr("attempts + 1"),
				"processing_started_at": now,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			claimed = append(claimed, id)
		}
	}
	var jobs []models.QueueJob
	if len(claimed) == 0 {
		return jobs, nil
	}
	err = r.db.Where("id IN ?", claimed).Find(&jobs).Error
	return jobs, err
}

func (r *QueueRepository) MarkDelivered(id uint) error {
	return r.db.Model(&models.QueueJob{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       domain.JobDelivered,
			"processed_at": time.Now().UTC(),
		}).Error
}

func (r *QueueRepository) MarkFailed(id uint, errMsg string) error {
	return r.db.Model(&models.QueueJob{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       domain.JobFailed,
			"processed_at": time.Now().UTC(),
			"last_error":   truncateError(errMsg),
		}).Error
}

// Reschedule keeps the job in the scheduled state with a new due time and
// clears the processing marker so the next pass can claim it again.
func (r *QueueRepository) Reschedule(id uint, at time.Time, errMsg string) error {
	return r.db.Model(&models.QueueJob{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"scheduled_for":         at,
			"last_error":            truncateError(errMsg),
			"processing_started_at": nil,
		}).Error
}

// CancelPending cancels a scheduled notification's jobs that no worker has
// claimed yet. Jobs already claimed run to completion (last-writer-wins).
func (r *QueueRepository) CancelPending(notificationID uint) (int64, error) {
	res := r.db.Model(&models.QueueJob{}).
		Where("notification_id = ? AND status = ? AND processing_started_at IS NULL",
			notificationID, domain.JobScheduled).
		Update("status", domain.JobCancelled)
	return res.RowsAffected, res.Error
}

func (r *QueueRepository) ListByNotification(notificationID uint) ([]models.QueueJob, error) {
	var jobs []models.QueueJob
	err := r.db.Where("notification_id = ?", notificationID).Find(&jobs).Error
	return jobs, err
}

// last_error column is size:1024
func truncateError(s string) string {
	if len(s) > 1024 {
		return s[:1024]
	}
	return s
}
