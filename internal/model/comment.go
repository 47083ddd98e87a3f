package model

import "time"

// Comment 帖子评论，软删。
type Comment struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	PostID    int64 `gorm:"not null;index:idx_comment_post"`
	UserID    int64 `gorm:"not null;index:idx_comment_user"`
	Content   string `gorm:"type:text;not null"`
	Deleted   bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Comment) TableName() string { return "comments" }
