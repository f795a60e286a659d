package services

import (
	"context"

	"gorm.io/gorm"

	"reviewhub/internal/apperrors"
	"reviewhub/internal/models"
	"reviewhub/internal/permissions"
)

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify stores a message for a user. System-internal: nothing exposes it as
// a direct write API.
func (s *NotificationService) Notify(ctx context.Context, userID uint, message string) error {
	notification := models.Notification{
		UserID:  userID,
		Message: message,
	}
	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return apperrors.Internal("failed to create notification", err)
	}
	return nil
}

// List returns the actor's notifications newest first.
func (s *NotificationService) List(ctx context.Context, actor permissions.Actor) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", actor.ID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, apperrors.Internal("failed to fetch notifications", err)
	}
	return notifications, nil
}

// MarkRead sets is_read on one of the actor's notifications. Someone else's
// notification is simply not found.
func (s *NotificationService) MarkRead(ctx context.Context, actor permissions.Actor, notificationID uint) error {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, actor.ID).
		Update("is_read", true)
	if result.Error != nil {
		return apperrors.Internal("failed to mark notification read", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("notification not found")
	}
	return nil
}
