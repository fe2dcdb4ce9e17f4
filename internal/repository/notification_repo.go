package repository

import (
	"time"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// RecipientFanout pairs one recipient row with its queue jobs so the whole
// fan-out can be persisted in a single transaction.
type RecipientFanout struct {
	Recipient models.NotificationRecipient
	Jobs      []models.QueueJob
}

// CreateWithFanout persists the notification, its recipient rows and their
// queue jobs atomically. Either everything from the send is durable or
// nothing is.
func (r *NotificationRepository) CreateWithFanout(n *models.Notification, fanouts []RecipientFanout) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		for i := range fanouts {
			rcpt := &fanouts[i].Recipient
			rcpt.NotificationID = n.ID
			if err := tx.Create(rcpt).Error; err != nil {
				return err
			}
			for j := range fanouts[i].Jobs {
				job := &fanouts[i].Jobs[j]
				job.NotificationID = n.ID
				job.RecipientID = rcpt.ID
				job.UserID = rcpt.UserID
				if err := tx.Create(job).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *NotificationRepository) GetByID(id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) GetRecipient(id uint) (*models.NotificationRecipient, error) {
	var rcpt models.NotificationRecipient
	if err := r.db.First(&rcpt, id).Error; err != nil {
		return nil, err
	}
	return &rcpt, nil
}

func (r *NotificationRepository) ListRecipients(notificationID uint) ([]models.NotificationRecipient, error) {
	var list []models.NotificationRecipient
	err := r.db.Where("notification_id = ?", notificationID).Find(&list).Error
	return list, err
}

// ListForUser returns a user's recipient rows with the parent notification
// preloaded, newest first. This backs the in-app notification feed.
func (r *NotificationRepository) ListForUser(userID uint, limit, offset int) ([]models.NotificationRecipient, error) {
	var list []models.NotificationRecipient
	err := r.db.Preload("Notification").
		Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *NotificationRepository) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.NotificationRecipient{}).
		Where("user_id = ? AND read_at IS NULL AND in_app_status <> ?", userID, domain.DeliveryNotApplicable).
		Count(&count).Error
	return count, err
}

// MarkRead stamps the read time once; repeated calls keep the first stamp and
// do not double-count.
func (r *NotificationRepository) MarkRead(notificationID, userID uint) error {
	// read_at is stamped regardless of channel selection, but the in-app
	// status only moves for rows that actually targeted the in-app channel
	res := r.db.Model(&models.NotificationRecipient{}).
		Where("notification_id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		Updates(map[string]interface{}{
			"read_at": time.Now().UTC(),
			"in_app_status": gorm.Expr("CASE WHEN in_app_status = ? THEN in_app_status ELSE ? END",
				domain.DeliveryNotApplicable, domain.DeliveryRead),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return r.bump(notificationID, "read_count")
	}
	return nil
}

func (r *NotificationRepository) MarkClicked(notificationID, userID uint) error {
	return r.db.Model(&models.NotificationRecipient{}).
		Where("notification_id = ? AND user_id = ? AND clicked_at IS NULL", notificationID, userID).
		Update("clicked_at", time.Now().UTC()).Error
}

// SetChannelStatus updates one channel's status on a recipient row.
func (r *NotificationRepository) SetChannelStatus(recipientID uint, channel, status string) error {
	col := models.ChannelStatusColumn(channel)
	if col == "" {
		return nil
	}
	return r.db.Model(&models.NotificationRecipient{}).
		Where("id = ?", recipientID).Update(col, status).Error
}

func (r *NotificationRepository) IncrementDelivered(notificationID uint) error {
	return r.bump(notificationID, "delivered_count")
}

func (r *NotificationRepository) IncrementFailed(notificationID uint) error {
	return r.bump(notificationID, "failed_count")
}

func (r *NotificationRepository) bump(notificationID uint, column string) error {
	return r.db.Model(&models.Notification{}).Where("id = ?", notificationID).
		Update(column, gorm.Expr(column+" + 1")).Error
}
