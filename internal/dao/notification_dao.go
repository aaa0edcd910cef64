package dao

import (
	"context"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"

	"gorm.io/gorm"
)

type NotificationDao struct {
	db *gorm.DB
}

func NewNotificationDao(db *gorm.DB) *NotificationDao {
	return &NotificationDao{db: db}
}

// CreateNotification 落库一条通知
func (d *NotificationDao) CreateNotification(ctx context.Context, n *model.Notification) error {
	return d.db.WithContext(ctx).Create(n).Error
}

// ListUserNotifications 用户通知列表
func (d *NotificationDao) ListUserNotifications(ctx context.Context, userID int64, limit int) ([]*model.Notification, error) {
	var ns []*model.Notification
	if limit <= 0 {
		limit = 50
	}
	err := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&ns).Error
	return ns, err
}
