package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/placefeed/internal/model"
	"github.com/d60-Lab/placefeed/internal/pagination"
)

// NotificationRepository 通知事件存储，按接收者只追加。
type NotificationRepository interface {
	Append(ctx context.Context, event *model.NotificationEvent) error
	// ListByRecipient 按事件 id 游标分页，新的在前。
	ListByRecipient(ctx context.Context, recipientID int64, cursor *pagination.Cursor, limit int) ([]*model.NotificationEvent, error)
}

type notificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Append(ctx context.Context, event *model.NotificationEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID int64, cursor *pagination.Cursor, limit int) ([]*model.NotificationEvent, error) {
	var res []*model.NotificationEvent
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Scopes(pagination.Scope("id", cursor, limit)).
		Find(&res).Error
	return res, err
}
