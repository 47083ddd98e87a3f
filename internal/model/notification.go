package model

import "time"

// 通知事件类型
const (
	NotificationFollow  = "follow"
	NotificationLike    = "like"
	NotificationComment = "comment"
)

// NotificationEvent 通知事件，按接收者追加写，从不更新。
// 自增主键同时充当游标排序键。
type NotificationEvent struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	RecipientID int64  `gorm:"not null;index:idx_notification_recipient"`
	Kind        string `gorm:"type:varchar(16);not null"`
	ActorID     int64  `gorm:"not null"`
	PostID      *int64 `gorm:"index"`
	CommentID   *int64
	CreatedAt   time.Time
}

func (NotificationEvent) TableName() string { return "notification_events" }
