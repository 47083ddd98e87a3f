package model

import "time"

// PostLike 点赞边（user, post）
type PostLike struct {
	ID     int64 `gorm:"primaryKey;autoIncrement"`
	UserID int64 `gorm:"index:idx_like_user;index:idx_like_pair,unique;not null"`
	PostID int64 `gorm:"not null;index:idx_like_post;index:idx_like_pair,unique"`
	// 复合唯一键，重复点赞是幂等 no-op
	// idx_like_pair = (user_id, post_id)
	CreatedAt time.Time
}

func (PostLike) TableName() string { return "post_likes" }
